package models

// Difficulty tiers a parent can configure for quest content.
const (
	DifficultyEasy      = "easy"
	DifficultyStandard  = "standard"
	DifficultyChallenge = "challenge"
)

// Settings holds the configurable options for a player.
type Settings struct {
	Difficulty   string  `json:"difficulty"`
	SpeechRate   float64 `json:"speechRate"` // baseline TTS rate, 1.0 = normal
	VoiceID      string  `json:"voiceId"`
	SoundEffects bool    `json:"soundEffects"`
	HintsEnabled bool    `json:"hintsEnabled"`
}

// DefaultSettings returns the settings applied to a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Difficulty:   DifficultyStandard,
		SpeechRate:   1.0,
		VoiceID:      "en-US-child-friendly",
		SoundEffects: true,
		HintsEnabled: true,
	}
}

// Normalize fills zero values with defaults so settings loaded from an older
// schema never propagate empty fields into gameplay.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	if s.Difficulty != DifficultyEasy && s.Difficulty != DifficultyStandard && s.Difficulty != DifficultyChallenge {
		s.Difficulty = def.Difficulty
	}
	if s.SpeechRate <= 0 {
		s.SpeechRate = def.SpeechRate
	}
	if s.VoiceID == "" {
		s.VoiceID = def.VoiceID
	}
	return s
}
