// Package text provides text sanitization utilities for cleaning and normalizing
// user-supplied text. It handles control characters, Unicode spaces, line endings,
// and other formatting issues to ensure consistent and safe text output.
package text

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minNewlinesThreshold = 3
)

// Regular expression patterns and character replacers used for text sanitization.
var (
	// controlCharsRegex matches ASCII control characters (including DEL 0x7F) that should be removed.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// multipleNewlinesRegex matches sequences of 3 or more newlines.
	// Used to normalize excessive line breaks into a consistent double newline format
	// to maintain paragraph separation while removing unnecessary extra blank lines.
	multipleNewlinesRegex = regexp.MustCompile("\n{" + strconv.Itoa(minNewlinesThreshold) + ",}")

	// unicodeReplacer defines mappings for Unicode character normalization to ensure consistent
	// text formatting by handling special Unicode characters that may cause display issues.
	unicodeReplacer = strings.NewReplacer(
		// Invisible format control characters - remove these
		"⁠", "", // Word Joiner
		"\uFEFF", "", // Byte Order Mark
		"­", "", // Soft Hyphen

		// Directional formatting characters - normalize to nothing
		"‎", "", // Left-to-Right Mark
		"‏", "", // Right-to-Left Mark

		// Invisible mathematical notation - remove these
		"⁡", "", // Function Application
		"⁢", "", // Invisible Times
		"⁣", "", // Invisible Separator
		"⁤", "", // Invisible Plus

		// Whitespace normalization - convert to regular spaces/newlines.
		// U+200C (Zero Width Non-Joiner) is intentionally preserved: it is a
		// meaningful character in Arabic-script Kurdish text.
		" ", "\n", // Line Separator
		" ", "\n\n", // Paragraph Separator
		"​", " ", // Zero Width Space
		" ", " ", // Medium Mathematical Space
		" ", " ", // Thin Space
		" ", " ", // Hair Space
		" ", " ", // Narrow No-Break Space
		"　", " ", // Ideographic Space
		" ", " ", // Non-breaking Space
	)
)
