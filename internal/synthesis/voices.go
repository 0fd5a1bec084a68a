package synthesis

import "github.com/fluentband/fluentband/internal/models"

// DefaultVoice is used when an accent has no mapping. Amy matches the
// British default used elsewhere in the content pipeline.
const DefaultVoice = "Amy"

var accentVoices = map[models.Accent]string{
	models.AccentBritish:    "Amy",
	models.AccentAmerican:   "Joanna",
	models.AccentCanadian:   "Joanna",
	models.AccentAustralian: "Olivia",
	models.AccentNewZealand: "Aria",
}

// VoiceFor returns the neural voice id for an accent, falling back to
// DefaultVoice for unknown accents.
func VoiceFor(accent models.Accent) string {
	if voice, ok := accentVoices[accent]; ok {
		return voice
	}
	return DefaultVoice
}
