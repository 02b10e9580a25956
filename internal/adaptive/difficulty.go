package adaptive

import "phonicsquest/internal/models"

// Scaled holds the effective presentation settings derived from the current
// consecutive-error streak.
type Scaled struct {
	SpeechRate   float64
	SimplifiedUI bool
}

// ScaleDifficulty derives effective settings from the base settings and the
// streak. The reduced rates are fixed multiples of the configured baseline,
// not of each other, so the bands never compound.
func ScaleDifficulty(base models.Settings, streak int) Scaled {
	base = base.Normalize()
	switch {
	case streak >= 3:
		return Scaled{SpeechRate: base.SpeechRate * 0.6, SimplifiedUI: true}
	case streak >= 1:
		return Scaled{SpeechRate: base.SpeechRate * 0.8, SimplifiedUI: false}
	default:
		return Scaled{SpeechRate: base.SpeechRate, SimplifiedUI: false}
	}
}

// ScaffoldPrompt prefixes the spoken prompt with encouragement that escalates
// in supportiveness as the streak grows. Streak 0 leaves the prompt untouched.
func ScaffoldPrompt(prompt string, streak int) string {
	switch {
	case streak <= 0:
		return prompt
	case streak == 1:
		return "You've got this! " + prompt
	case streak == 2:
		return "Let's slow down and listen carefully. " + prompt
	default:
		return "It's okay, we'll make this one simpler. Take your time. " + prompt
	}
}
