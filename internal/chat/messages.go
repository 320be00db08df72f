package chat

import "github.com/chatkurd/chatkurd/internal/prompt"

// userMessages holds the user-facing strings for one response language.
// The message field of error bodies stays English for machine consumers;
// reply fields carry these localized strings.
type userMessages struct {
	MessageRequired    string
	EmptyMessage       string
	PersonaNotFound    string
	InvalidName        string
	InvalidPersonality string
	PasscodePrompt     string
	GenerationFailed   string
}

var messagesByLanguage = map[string]userMessages{
	prompt.LanguageEnglish: {
		MessageRequired:    "Message is required",
		EmptyMessage:       "Please write a message.",
		PersonaNotFound:    "Character not found",
		InvalidName:        "Invalid character name.",
		InvalidPersonality: "Invalid character personality.",
		PasscodePrompt:     "Before we talk, you need to tell me our code.",
		GenerationFailed:   "Sorry, I couldn't come up with a reply. Please try again.",
	},
	prompt.LanguageKurdish: {
		MessageRequired:    "Message is required",
		EmptyMessage:       "تکایە نامەیەک بنووسە.",
		PersonaNotFound:    "Character not found",
		InvalidName:        "ناوی کارەکتەر دروست نییە.",
		InvalidPersonality: "کەسایەتی کارەکتەر دروست نییە.",
		PasscodePrompt:     "پێش ئەوەی قسە بکەین، پێویستە کۆدەکەمان پێ بڵێیت.",
		GenerationFailed:   "ببورە، نەمتوانی وەڵامێک دروست بکەم. تکایە دووبارە هەوڵ بدەرەوە.",
	},
}

// messagesFor returns the string set for the requested language,
// falling back to English for anything unrecognized.
func messagesFor(language string) userMessages {
	if m, ok := messagesByLanguage[language]; ok {
		return m
	}
	return messagesByLanguage[prompt.LanguageEnglish]
}
