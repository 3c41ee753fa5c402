package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeUTF8 removes invalid UTF-8 sequences from a string. Raw bank
// exports occasionally carry broken encodings that would otherwise leak
// into normalized descriptions and insight text.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// titleCase renders a canonical lower-case merchant name for display,
// capitalizing the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
