package persona

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/chatkurd/chatkurd/internal/errors"
	"github.com/chatkurd/chatkurd/internal/text"
)

const (
	maxNameLength        = 50
	maxPersonalityLength = 5000
	maxSpecialCharRatio  = 0.10
)

// nameAllowedRegex is the allow-list for character names: Latin letters
// (with common diacritics), Arabic-script letters covering Kurdish, digits,
// spaces, hyphens, apostrophes, periods, and underscores.
var nameAllowedRegex = regexp.MustCompile(`^[a-zA-Z\x{00C0}-\x{024F}\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}0-9 .'_-]+$`)

// specialChars is the character set counted toward the personality
// special-character ratio limit.
const specialChars = "<>{}[]\\|`~!@#$%^&*()+="

// ValidateName checks a caller-supplied character name against the allow-list
// and the name rule chain. It returns the trimmed name unchanged on success,
// or a validation error whose message is the failing rule's reason code.
// All-or-nothing: a rejected name is never partially sanitized.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errs.NewValidationError("empty_name", nil)
	}
	if len([]rune(trimmed)) > maxNameLength {
		return "", errs.NewValidationError("name_too_long", nil)
	}
	if !nameAllowedRegex.MatchString(trimmed) {
		return "", errs.NewValidationError("name_disallowed_chars", nil)
	}
	if reason, violated := firstViolation(trimmed, nameRules); violated {
		return "", errs.NewValidationError(reason, nil)
	}
	return trimmed, nil
}

// ValidatePersonality checks a caller-supplied personality prompt against the
// personality rule chain and the special-character ratio limit. On success the
// text is normalized (line endings, collapsed whitespace, collapsed blank
// lines) and returned. ValidatePersonality is idempotent on its own output.
func ValidatePersonality(personality string) (string, error) {
	trimmed := strings.TrimSpace(personality)
	if trimmed == "" {
		return "", errs.NewValidationError("empty_personality", nil)
	}
	if len([]rune(trimmed)) > maxPersonalityLength {
		return "", errs.NewValidationError("personality_too_long", nil)
	}
	if specialCharRatio(trimmed) > maxSpecialCharRatio {
		return "", errs.NewValidationError("special_char_ratio", nil)
	}
	if reason, violated := firstViolation(trimmed, personalityRules); violated {
		return "", errs.NewValidationError(reason, nil)
	}

	normalized, err := text.Sanitize(trimmed)
	if err != nil {
		return "", fmt.Errorf("personality normalization failed: %w", err)
	}
	return normalized, nil
}

func specialCharRatio(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}

	special := 0
	for _, r := range runes {
		if strings.ContainsRune(specialChars, r) {
			special++
		}
	}
	return float64(special) / float64(len(runes))
}
