package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CurrentSchemaVersion is stamped on every persisted snapshot.
const CurrentSchemaVersion = 3

// Guardian is a collectible awarded for mastering a sound, keyed by the
// lowercased sound identifier.
type Guardian struct {
	Sound    string    `json:"sound"`
	Name     string    `json:"name"`
	ImageRef string    `json:"imageRef,omitempty"`
	SavedAt  time.Time `json:"savedAt"`
}

// AppState is the full persisted snapshot for one player: the unit of
// persistence and the unit the progression reducer transforms.
//
// The top-level reward counters mirror the profile's lifetime totals for
// compatibility with older snapshots; the profile copy is the source of truth
// and the mirrors are rewritten from it on every reduction.
type AppState struct {
	SchemaVersion    int                 `json:"schemaVersion"`
	Nodes            []SkillNode         `json:"nodes"`
	TotalStars       int                 `json:"totalStars"`
	TotalSoundShards int                 `json:"totalSoundShards"`
	TotalMagicSeeds  int                 `json:"totalMagicSeeds"`
	ActiveCharacter  string              `json:"activeCharacter"`
	Settings         Settings            `json:"settings"`
	Guardians        map[string]Guardian `json:"guardians"`
	Profile          UserProfile         `json:"profile"`
	Sessions         []GameSession       `json:"sessions"`
}

// initialNodes is the fixed progression map created at install.
var initialNodes = []SkillNode{
	{ID: "whispering-meadow", Name: "Whispering Meadow", Level: LevelPhonemicAwareness, Sound: "m"},
	{ID: "echo-caverns", Name: "Echo Caverns", Level: LevelPhonemicAwareness, Sound: "s"},
	{ID: "letter-grove", Name: "Letter Grove", Level: LevelLetterSounds, Sound: "t"},
	{ID: "alphabet-falls", Name: "Alphabet Falls", Level: LevelLetterSounds, Sound: "a"},
	{ID: "twin-sound-ridge", Name: "Twin Sound Ridge", Level: LevelDigraphsBlends, Sound: "sh"},
	{ID: "blend-bog", Name: "Blend Bog", Level: LevelDigraphsBlends, Sound: "st"},
	{ID: "word-forge", Name: "Word Forge", Level: LevelBlendingCVC, Sound: "c"},
	{ID: "cvc-canyon", Name: "CVC Canyon", Level: LevelBlendingCVC, Sound: "p"},
	{ID: "sight-citadel", Name: "Sight Citadel", Level: LevelSightWords, Sound: "th"},
	{ID: "reading-summit", Name: "Reading Summit", Level: LevelSightWords, Sound: "w"},
}

// NewAppState returns the snapshot created at install: the fixed node set with
// only the first node unlocked, default settings, and a fresh profile.
func NewAppState(now time.Time) AppState {
	nodes := make([]SkillNode, len(initialNodes))
	for i, n := range initialNodes {
		node := n
		node.IsLocked = i != 0
		nodes[i] = node
	}

	return AppState{
		SchemaVersion:   CurrentSchemaVersion,
		Nodes:           nodes,
		ActiveCharacter: "pip-the-fox",
		Settings:        DefaultSettings(),
		Guardians:       map[string]Guardian{},
		Profile: UserProfile{
			ID:           uuid.New().String(),
			MasteryLevel: 1,
			LastActiveAt: now,
			CreatedAt:    now,
		},
	}
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := s
	out.Nodes = make([]SkillNode, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Guardians = make(map[string]Guardian, len(s.Guardians))
	for k, g := range s.Guardians {
		out.Guardians[k] = g
	}
	out.Profile = s.Profile.Clone()
	out.Sessions = append([]GameSession(nil), s.Sessions...)
	return out
}

// NodeByID returns the node with the given id, or nil.
func (s *AppState) NodeByID(id string) *SkillNode {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// GuardianKey normalizes a sound identifier for the guardians mapping.
func GuardianKey(sound string) string {
	return strings.ToLower(strings.TrimSpace(sound))
}
