package shared

import (
	"unicode"
	"unicode/utf8"
)

// ToTitle upper-cases the first rune and leaves the rest untouched.
func ToTitle(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
