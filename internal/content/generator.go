package content

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"phonicsquest/internal/models"
)

// QuestLength is the number of tasks in every quest.
const QuestLength = 5

// GenerateTasks deterministically builds a quest's task list for a skill node
// from the content bank. The same node and attempt count always produce the
// same list, and no network is involved, so a playable quest is always
// available immediately.
func GenerateTasks(node models.SkillNode, settings models.Settings) []models.Task {
	c := ForLevel(node.Level)
	rng := rand.New(rand.NewSource(taskSeed(node)))

	kinds := kindsForLevel(node.Level)
	tasks := make([]models.Task, 0, QuestLength)
	for i := 0; i < QuestLength; i++ {
		kind := kinds[i%len(kinds)]
		task, err := buildTask(kind, c, node, rng)
		if err != nil {
			// A bank entry too small for this kind; fall back to the
			// sound-match drill which every level can serve.
			task, _ = buildTask(models.ActivitySoundMatch, c, node, rng)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// taskSeed derives a stable seed from the node identity and attempt count so
// repeat visits to a biome see fresh but reproducible quests.
func taskSeed(node models.SkillNode) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", node.ID, node.Attempts)
	return int64(h.Sum64())
}

// kindsForLevel maps each curriculum tier to the mini-games that drill it.
func kindsForLevel(level models.SkillLevel) []models.ActivityKind {
	switch level {
	case models.LevelLetterSounds:
		return []models.ActivityKind{models.ActivityLetterSound, models.ActivityLetterTrace, models.ActivityLetterSound}
	case models.LevelDigraphsBlends:
		return []models.ActivityKind{models.ActivitySoundMatch, models.ActivityWordBuilder, models.ActivitySoundMatch}
	case models.LevelBlendingCVC:
		return []models.ActivityKind{models.ActivityBlending, models.ActivityWordBuilder, models.ActivityBlending}
	case models.LevelSightWords:
		return []models.ActivityKind{models.ActivitySightWord, models.ActivitySightWord, models.ActivityRhymeTime}
	default:
		return []models.ActivityKind{models.ActivitySoundMatch, models.ActivityRhymeTime, models.ActivitySoundMatch}
	}
}

func buildTask(kind models.ActivityKind, c LevelContent, node models.SkillNode, rng *rand.Rand) (models.Task, error) {
	switch kind {
	case models.ActivitySoundMatch:
		return buildSoundMatch(c, node, rng)
	case models.ActivityLetterSound:
		return buildLetterSound(c, rng)
	case models.ActivityLetterTrace:
		return buildLetterTrace(c, rng)
	case models.ActivityWordBuilder:
		return buildWordBuilder(c, rng)
	case models.ActivityBlending:
		return buildBlending(c, rng)
	case models.ActivitySightWord:
		return buildSightWord(c, rng)
	case models.ActivityRhymeTime:
		return buildRhymeTime(c, rng)
	default:
		return models.Task{}, fmt.Errorf("no builder for activity kind %q", kind)
	}
}

func buildSoundMatch(c LevelContent, node models.SkillNode, rng *rand.Rand) (models.Task, error) {
	sound := node.Sound
	if sound == "" {
		sound = c.Sounds[rng.Intn(len(c.Sounds))]
	}
	word := wordWithSound(c.Words, sound, rng)
	options, correct := optionsAround(c.Words, word, 3, rng)

	t := models.Task{
		Kind:         models.ActivitySoundMatch,
		Prompt:       fmt.Sprintf("Which word has the /%s/ sound?", sound),
		Options:      options,
		CorrectIndex: correct,
		TargetSound:  sound,
	}
	return t, t.Validate()
}

func buildLetterSound(c LevelContent, rng *rand.Rand) (models.Task, error) {
	letter := c.Sounds[rng.Intn(len(c.Sounds))]
	options, correct := optionsAround(c.Sounds, letter, 3, rng)

	t := models.Task{
		Kind:         models.ActivityLetterSound,
		Prompt:       fmt.Sprintf("Tap the letter that makes the /%s/ sound.", letter),
		Options:      options,
		CorrectIndex: correct,
	}
	return t, t.Validate()
}

func buildLetterTrace(c LevelContent, rng *rand.Rand) (models.Task, error) {
	letter := c.Sounds[rng.Intn(len(c.Sounds))]

	t := models.Task{
		Kind:        models.ActivityLetterTrace,
		Prompt:      fmt.Sprintf("Trace the letter %q while saying its sound.", letter),
		TraceLetter: letter,
	}
	return t, t.Validate()
}

func buildWordBuilder(c LevelContent, rng *rand.Rand) (models.Task, error) {
	word := c.Words[rng.Intn(len(c.Words))]
	parts := splitWord(word)

	t := models.Task{
		Kind:       models.ActivityWordBuilder,
		Prompt:     fmt.Sprintf("Build the word %q from its parts.", word),
		TargetWord: word,
		WordParts:  shuffled(parts, rng),
	}
	return t, t.Validate()
}

func buildBlending(c LevelContent, rng *rand.Rand) (models.Task, error) {
	word := c.Words[rng.Intn(len(c.Words))]
	options, correct := optionsAround(c.Words, word, 3, rng)

	t := models.Task{
		Kind:         models.ActivityBlending,
		Prompt:       fmt.Sprintf("Blend the sounds %s. What word do they make?", spellOut(word)),
		Options:      options,
		CorrectIndex: correct,
		TargetWord:   word,
	}
	return t, t.Validate()
}

func buildSightWord(c LevelContent, rng *rand.Rand) (models.Task, error) {
	word := c.Words[rng.Intn(len(c.Words))]
	options, correct := optionsAround(c.Words, word, 3, rng)

	t := models.Task{
		Kind:         models.ActivitySightWord,
		Prompt:       fmt.Sprintf("Find the word %q as fast as you can!", word),
		Options:      options,
		CorrectIndex: correct,
		TargetWord:   word,
	}
	return t, t.Validate()
}

func buildRhymeTime(c LevelContent, rng *rand.Rand) (models.Task, error) {
	families := make([]string, 0, len(c.RhymeFamilies))
	for f := range c.RhymeFamilies {
		families = append(families, f)
	}
	if len(families) == 0 {
		return models.Task{}, fmt.Errorf("no rhyme families for level %s", c.Level)
	}
	// Map iteration order is random; sort-free stable pick via min family name
	// would bias, so pick from a deterministic ordering instead.
	family := minString(families)
	words := c.RhymeFamilies[family]
	target := words[rng.Intn(len(words))]

	// One rhyming answer plus non-rhyming distractors from the word bank.
	answer := target
	for _, w := range words {
		if w != target {
			answer = w
			break
		}
	}
	distractors := make([]string, 0, 2)
	for _, w := range shuffled(c.Words, rng) {
		if !strings.HasSuffix(w, family) && len(distractors) < 2 {
			distractors = append(distractors, w)
		}
	}

	options := append([]string{answer}, distractors...)
	options = shuffled(options, rng)
	correct := indexOf(options, answer)

	t := models.Task{
		Kind:         models.ActivityRhymeTime,
		Prompt:       fmt.Sprintf("Which word rhymes with %q?", target),
		Options:      options,
		CorrectIndex: correct,
	}
	return t, t.Validate()
}

// wordWithSound picks a word containing the sound, or any word when none match.
func wordWithSound(words []string, sound string, rng *rand.Rand) string {
	matches := make([]string, 0, len(words))
	for _, w := range words {
		if strings.Contains(w, sound) {
			matches = append(matches, w)
		}
	}
	if len(matches) == 0 {
		return words[rng.Intn(len(words))]
	}
	return matches[rng.Intn(len(matches))]
}

// optionsAround builds a shuffled option list containing the answer and
// distractors drawn from the pool, returning the answer's index.
func optionsAround(pool []string, answer string, count int, rng *rand.Rand) ([]string, int) {
	options := []string{answer}
	for _, w := range shuffled(pool, rng) {
		if len(options) > count {
			break
		}
		if w != answer {
			options = append(options, w)
		}
	}
	options = shuffled(options, rng)
	return options, indexOf(options, answer)
}

func shuffled(in []string, rng *rand.Rand) []string {
	out := append([]string(nil), in...)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func indexOf(options []string, answer string) int {
	for i, o := range options {
		if o == answer {
			return i
		}
	}
	return 0
}

// splitWord breaks a word into onset and rime, or letters for short words.
func splitWord(word string) []string {
	if len(word) <= 3 {
		parts := make([]string, 0, len(word))
		for _, r := range word {
			parts = append(parts, string(r))
		}
		return parts
	}
	return []string{word[:2], word[2:]}
}

// spellOut renders a word as slash-delimited sounds, e.g. /c/ /a/ /t/.
func spellOut(word string) string {
	parts := make([]string, 0, len(word))
	for _, r := range word {
		parts = append(parts, "/"+string(r)+"/")
	}
	return strings.Join(parts, " ")
}

func minString(in []string) string {
	min := in[0]
	for _, s := range in[1:] {
		if s < min {
			min = s
		}
	}
	return min
}
