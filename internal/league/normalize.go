package league

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics and punctuation, collapses
// whitespace, then resolves through the alias map.
func Normalize(s string, aliases map[string]string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripPunctuation(s)
	s = collapseWhitespace(s)
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripPunctuation turns separators like "&", "-" and "." into spaces and
// drops anything else that is not a letter or digit.
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '&', r == '-', r == '.', r == '_', r == '/':
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
