package parser

import (
	"regexp"
	"strings"
)

var (
	// questionStartRe matches numbering at the start of a line: "12. ", "12) ",
	// "Q12.", "Q.12", "Question 12:", "प्रश्न 12.".
	questionStartRe = regexp.MustCompile(`^(?:\d{1,4}[.)]|(?i:q(?:ues|uestion)?)\s*[.\-]?\s*\d{1,4}\s*[.):\-]?|प्रश्न\s*[.\-]?\s*\d{1,4}\s*[.):\-]?)(?:\s+|$)`)

	// answerMarkerRe requires a separator after the marker word so that prose
	// such as "the answer is" is not mistaken for an answer key. Group 1 spans
	// the marker itself.
	answerMarkerRe = regexp.MustCompile(`(?i)(?:^|[\s(\[])((?:correct\s+answer|correct\s+option|right\s+answer|answer|ans|सही\s+उत्तर|उत्तर)\s*[:：\-–=.)])`)

	// explanationMarkerRe matches the start of an explanation. Group 1 spans the marker.
	explanationMarkerRe = regexp.MustCompile(`(?i)(?:^|[\s(\[])((?:explanation|explain|exp|solution|sol|व्याख्या|हल|स्पष्टीकरण)\s*[:：\-–.)])`)

	// optionsLineRe matches a comma-joined option list: "Options: 3, 4, 5, 6".
	optionsLineRe = regexp.MustCompile(`(?im)^\s*(options?|विकल्प)\s*[:：\-]\s*(.+)$`)

	// answerLetterRe matches a lettered answer token: "B", "(b)", "Option C", "D.".
	answerLetterRe = regexp.MustCompile(`^(?i:option\s*)?[(\[]?\s*([A-Ha-h])\s*[)\].]?(?:[\s,;:\-]|$)`)

	// answerDigitRe matches a numbered answer token: "2", "(3)", "Option 4".
	answerDigitRe = regexp.MustCompile(`^(?i:option\s*)?[(\[]?\s*([1-8])\s*[)\].]?(?:[\s,;:\-]|$)`)

	// answerHindiRe matches a Hindi-lettered answer token: "ख", "(ग)".
	answerHindiRe = regexp.MustCompile(`^(?:विकल्प\s*)?[(\[]?\s*(क|ख|ग|घ|ङ|च|छ|ज)\s*[)\].]?(?:[\s,;:\-]|$)`)

	upperOptionMarkers = optionMarkers(letterSet("ABCDEFGH"))
	lowerOptionMarkers = optionMarkers(letterSet("abcdefgh"))
	hindiOptionMarkers = optionMarkers([]string{"क", "ख", "ग", "घ", "ङ", "च", "छ", "ज"})

	hindiLetterIndex = map[string]int{"क": 0, "ख": 1, "ग": 2, "घ": 3, "ङ": 4, "च": 5, "छ": 6, "ज": 7}
)

func letterSet(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// optionMarkers builds one regex per option position matching "(A)", "A." or "A)".
func optionMarkers(letters []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(letters))
	for i, l := range letters {
		q := regexp.QuoteMeta(l)
		res[i] = regexp.MustCompile(`(?:^|\s)(?:\(` + q + `\)\s*|` + q + `[.)](?:\s+|$))`)
	}
	return res
}

// scanOptionMarkers finds markers A, B, C... in order, each after the previous one.
// Every occurrence of the first marker is tried as a starting point ("A. P. J.
// Abdul Kalam" in a question must not hide the real options). The longest run
// wins, the latest start breaking ties. It returns the [start, end) span of
// every marker in that run.
func scanOptionMarkers(s string, markers []*regexp.Regexp) [][2]int {
	var best [][2]int
	for _, first := range markers[0].FindAllStringIndex(s, -1) {
		spans := [][2]int{{first[0], first[1]}}
		pos := first[1]
		for _, re := range markers[1:] {
			loc := re.FindStringIndex(s[pos:])
			if loc == nil {
				break
			}
			spans = append(spans, [2]int{pos + loc[0], pos + loc[1]})
			pos += loc[1]
		}
		if len(spans) >= len(best) {
			best = spans
		}
	}
	return best
}

// answerMarkerSpans returns the [start, end) span of every answer marker in s.
func answerMarkerSpans(s string) [][2]int {
	matches := answerMarkerRe.FindAllStringSubmatchIndex(s, -1)
	spans := make([][2]int, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, [2]int{m[2], m[3]})
	}
	return spans
}

func isAnswerToken(s string) bool {
	s = strings.TrimSpace(s)
	return answerLetterRe.MatchString(s) || answerDigitRe.MatchString(s) || answerHindiRe.MatchString(s)
}

// isAnswerLine reports whether a trimmed line carries the answer key, either
// as a leading "Ans:" line or as a trailing "... Ans: B" on a single-line question.
func isAnswerLine(line string) bool {
	spans := answerMarkerSpans(line)
	if len(spans) == 0 {
		return false
	}
	if opensWithAnswer(line, spans) {
		return true
	}
	last := spans[len(spans)-1]
	return isAnswerToken(line[last[1]:])
}

// isStandaloneAnswerLine reports whether a trimmed line starts with an answer
// marker, like "Ans: B" or "उत्तर: ख" on its own line.
func isStandaloneAnswerLine(line string) bool {
	spans := answerMarkerSpans(line)
	return len(spans) > 0 && opensWithAnswer(line, spans)
}

func opensWithAnswer(line string, spans [][2]int) bool {
	lead := strings.TrimSpace(line[:spans[0][0]])
	return lead == "" || lead == "("
}

// isExplanationLine reports whether a trimmed line opens an explanation.
func isExplanationLine(line string) bool {
	loc := explanationMarkerRe.FindStringSubmatchIndex(line)
	return loc != nil && strings.TrimSpace(line[:loc[2]]) == ""
}

// hasOptionMarkers reports whether a line starts with an option marker or
// carries at least two inline options.
func hasOptionMarkers(line string) bool {
	for _, markers := range [][]*regexp.Regexp{upperOptionMarkers, lowerOptionMarkers, hindiOptionMarkers} {
		for _, re := range markers {
			if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
				return true
			}
		}
	}
	return len(scanOptionMarkers(line, upperOptionMarkers)) >= 2
}

// isQuestionStart reports whether a line opens a new numbered question.
func isQuestionStart(line string) bool {
	return questionStartRe.MatchString(line)
}
