package validation

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted
const MinPasswordLength = 8

// ValidPassword reports whether s is at least MinPasswordLength characters,
// has no spaces, and contains an ASCII digit and an ASCII uppercase letter.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}
	if strings.Contains(s, " ") {
		return false
	}
	hasDigit, hasUpper := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		}
	}
	return hasDigit && hasUpper
}
