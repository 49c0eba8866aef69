package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares pasted text for parsing: unix line endings, NFC form
// (Devanagari pasted from PDFs and Word is often decomposed) and plain spaces.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f', '\t':
			return ' '
		case '\ufeff', '\u200b':
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(s)
}

func scriptCounts(s string) (latin, deva int) {
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			deva++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	return latin, deva
}

func hasDevanagari(s string) bool {
	_, d := scriptCounts(s)
	return d > 0
}

// devanagariDominant reports whether Devanagari letters outnumber Latin ones.
func devanagariDominant(s string) bool {
	l, d := scriptCounts(s)
	return d > 0 && d >= l
}

// languageNeutral reports text with no letters at all, e.g. "1947" or "25%".
func languageNeutral(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// collapseSpaces joins whitespace runs into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText trims a multi-line fragment, collapsing the spacing inside each line.
func cleanText(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = collapseSpaces(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
