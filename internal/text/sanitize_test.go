package text_test

import (
	"testing"

	"github.com/chatkurd/chatkurd/internal/text"
)

func TestSanitize_Normalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain text unchanged",
			input:    "A calm poet from Sulaymaniyah.",
			expected: "A calm poet from Sulaymaniyah.",
		},
		{
			name:     "CRLF line endings",
			input:    "First line.\r\nSecond line.",
			expected: "First line.\nSecond line.",
		},
		{
			name:     "Bare CR line endings",
			input:    "First line.\rSecond line.",
			expected: "First line.\nSecond line.",
		},
		{
			name:     "Collapses runs of spaces and tabs",
			input:    "Loves   tea\tand \t long walks.",
			expected: "Loves tea and long walks.",
		},
		{
			name:     "Collapses three or more newlines to two",
			input:    "Paragraph one.\n\n\n\nParagraph two.",
			expected: "Paragraph one.\n\nParagraph two.",
		},
		{
			name:     "Removes control characters",
			input:    "Hello\x00 there\x1F.",
			expected: "Hello there.",
		},
		{
			name:     "Removes byte order mark and soft hyphen",
			input:    "\uFEFFDi­lan",
			expected: "Dilan",
		},
		{
			name:     "Converts non-breaking space",
			input:    "Dilan Baran",
			expected: "Dilan Baran",
		},
		{
			name:     "Preserves zero width non-joiner in Kurdish text",
			input:    "دڵ‌خۆش",
			expected: "دڵ‌خۆش",
		},
		{
			name:     "Trims surrounding whitespace",
			input:    "  a friendly storyteller  ",
			expected: "a friendly storyteller",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := text.Sanitize(tc.input)
			if err != nil {
				t.Fatalf("Sanitize(%q) returned error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty input", input: ""},
		{name: "Whitespace only", input: "  \n\t  "},
		{name: "Control characters only", input: "\x00\x01\x02"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := text.Sanitize(tc.input); err == nil {
				t.Errorf("Sanitize(%q) expected error, got nil", tc.input)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"A  messy\r\n\n\n\ninput\twith   everything.",
		"Already clean text.",
		"Line one.\n\nLine two.",
	}

	for _, input := range inputs {
		once, err := text.Sanitize(input)
		if err != nil {
			t.Fatalf("first Sanitize(%q) returned error: %v", input, err)
		}
		twice, err := text.Sanitize(once)
		if err != nil {
			t.Fatalf("second Sanitize(%q) returned error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Sanitize not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}
