package parser

import "strings"

// splitBilingual separates English text from an inline Hindi rendering.
//
// Recognised layouts, tried in order:
//   - separate lines, Devanagari-dominant lines being Hindi
//   - "English text (हिंदी पाठ)", the last parenthesised Devanagari group being Hindi
//   - "English text / हिंदी पाठ"
//
// Text that does not pair the two scripts is returned whole as English.
func splitBilingual(s string) (en, hi string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if en, hi, ok := splitLines(s); ok {
		return en, hi
	}
	if en, hi, ok := splitParenthesised(s); ok {
		return en, hi
	}
	if en, hi, ok := splitSlash(s); ok {
		return en, hi
	}
	return cleanText(s), ""
}

func splitLines(s string) (en, hi string, ok bool) {
	if !strings.Contains(s, "\n") {
		return "", "", false
	}
	var enLines, hiLines []string
	for _, l := range strings.Split(s, "\n") {
		l = collapseSpaces(l)
		switch {
		case l == "":
		case devanagariDominant(l):
			if strings.HasPrefix(l, "(") && strings.HasSuffix(l, ")") {
				l = strings.TrimSpace(l[1 : len(l)-1])
			}
			hiLines = append(hiLines, l)
		default:
			enLines = append(enLines, l)
		}
	}
	if len(enLines) == 0 || len(hiLines) == 0 {
		return "", "", false
	}
	return strings.Join(enLines, "\n"), strings.Join(hiLines, "\n"), true
}

// splitParenthesised extracts the last balanced (...) group holding Devanagari
// while the remaining text is not itself Hindi.
func splitParenthesised(s string) (en, hi string, ok bool) {
	end := strings.LastIndexByte(s, ')')
	for end >= 0 {
		depth := 0
		start := -1
		for i := end; i >= 0; i-- {
			switch s[i] {
			case ')':
				depth++
			case '(':
				depth--
			}
			if depth == 0 {
				start = i
				break
			}
		}
		if start < 0 {
			return "", "", false
		}
		inner := strings.TrimSpace(s[start+1 : end])
		outside := cleanText(s[:start] + " " + s[end+1:])
		if devanagariDominant(inner) && outside != "" && !hasDevanagari(outside) {
			return outside, cleanText(inner), true
		}
		end = strings.LastIndexByte(s[:start], ')')
	}
	return "", "", false
}

func splitSlash(s string) (en, hi string, ok bool) {
	i := strings.LastIndex(s, " / ")
	if i < 0 {
		return "", "", false
	}
	left, right := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:])
	if left == "" || right == "" || !devanagariDominant(right) || hasDevanagari(left) {
		return "", "", false
	}
	return cleanText(left), cleanText(right), true
}
