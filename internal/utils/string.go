package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsSeparator checks if a rune separates words in a species name
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.'
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DisplayName capitalizes the first letter of every word, keeping the
// separators: "mr-mime" becomes "Mr-Mime".
func DisplayName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if upper && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		upper = IsSeparator(r)
	}
	return b.String()
}

// TrimLastRune drops the final rune of s. Empty input is returned unchanged.
func TrimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
