// Package stringutil provides common string predicates shared by the
// token-classification stages.
package stringutil

import (
	"strings"
	"unicode"
)

// IsNumeric checks if a string contains only ASCII digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// HasASCIILetter reports whether s contains at least one ASCII letter.
func HasASCIILetter(s string) bool {
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// StripSpaces removes every whitespace rune from s, including full-width
// ideographic spaces. Identifier fields (class names, room numbers) are
// normalized this way.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CollapseSpaces folds runs of whitespace into single ASCII spaces and
// trims. Prose fields (names, buildings, teachers) are normalized this way.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
