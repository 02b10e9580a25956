package content

import "phonicsquest/internal/models"

// LevelContent is the static material available for one skill level:
// the phonics rule being drilled, its sound and word inventories, and the
// rhyme families used by rhyming activities. Pure data, no behavior.
type LevelContent struct {
	Level         models.SkillLevel
	Rule          string
	Sounds        []string
	Words         []string
	RhymeFamilies map[string][]string
}

var bank = map[models.SkillLevel]LevelContent{
	models.LevelPhonemicAwareness: {
		Level: models.LevelPhonemicAwareness,
		Rule:  "Words are made of individual sounds you can hear and play with.",
		Sounds: []string{
			"m", "s", "t", "a", "p", "b", "f", "n",
		},
		Words: []string{
			"map", "sun", "top", "pan", "bat", "fin", "net", "mud",
		},
		RhymeFamilies: map[string][]string{
			"at": {"cat", "hat", "mat", "rat", "bat"},
			"an": {"can", "fan", "man", "pan", "van"},
			"og": {"dog", "fog", "log", "hog", "jog"},
		},
	},
	models.LevelLetterSounds: {
		Level: models.LevelLetterSounds,
		Rule:  "Each letter makes its own sound.",
		Sounds: []string{
			"s", "a", "t", "p", "i", "n", "m", "d", "g", "o", "c", "k",
		},
		Words: []string{
			"sat", "pin", "tap", "dig", "man", "cot", "kid", "nap",
		},
		RhymeFamilies: map[string][]string{
			"ap": {"cap", "map", "nap", "tap", "gap"},
			"it": {"bit", "fit", "hit", "kit", "sit"},
		},
	},
	models.LevelDigraphsBlends: {
		Level: models.LevelDigraphsBlends,
		Rule:  "Two letters can team up to make one new sound.",
		Sounds: []string{
			"sh", "ch", "th", "st", "bl", "tr", "fl", "gr",
		},
		Words: []string{
			"ship", "chat", "thin", "stop", "blue", "trip", "flag", "grab",
		},
		RhymeFamilies: map[string][]string{
			"ip": {"ship", "chip", "trip", "flip", "drip"},
			"in": {"thin", "chin", "shin", "spin", "grin"},
		},
	},
	models.LevelBlendingCVC: {
		Level: models.LevelBlendingCVC,
		Rule:  "Slide the sounds together to read the whole word.",
		Sounds: []string{
			"c", "p", "b", "h", "r", "l", "j", "w",
		},
		Words: []string{
			"cat", "pig", "bus", "hen", "red", "leg", "jam", "web",
		},
		RhymeFamilies: map[string][]string{
			"en": {"hen", "pen", "ten", "den", "men"},
			"ug": {"bug", "hug", "jug", "mug", "rug"},
		},
	},
	models.LevelSightWords: {
		Level: models.LevelSightWords,
		Rule:  "Some words appear so often you learn them by sight.",
		Sounds: []string{
			"th", "w", "y", "wh",
		},
		Words: []string{
			"the", "was", "you", "said", "what", "they", "have", "come",
		},
		RhymeFamilies: map[string][]string{
			"ay": {"say", "day", "way", "play", "stay"},
		},
	},
}

// ForLevel returns the content bank entry for a skill level. Unknown levels
// fall back to the easiest tier so a stale snapshot never breaks generation.
func ForLevel(level models.SkillLevel) LevelContent {
	if c, ok := bank[level]; ok {
		return c
	}
	return bank[models.LevelPhonemicAwareness]
}
