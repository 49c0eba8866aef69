package parser

import (
	"strings"
	"unicode"
)

// regions is a block cut at its answer and explanation markers.
type regions struct {
	body        string
	answer      string
	explanation string
}

// splitRegions cuts a block at the rightmost answer marker that precedes the
// explanation. Everything before the marker holds the question and options.
func splitRegions(text string) (regions, *Failure) {
	spans := answerMarkerSpans(text)
	if len(spans) == 0 {
		return regions{}, fail(ReasonMissingAnswer, "no answer marker such as \"Ans:\" found")
	}

	var r regions
	limit := len(text)
	offset := spans[0][1]
	if loc := explanationMarkerRe.FindStringSubmatchIndex(text[offset:]); loc != nil {
		limit = offset + loc[2]
		r.explanation = text[offset+loc[3]:]
	}

	cands := [][2]int{spans[0]}
	for _, sp := range spans[1:] {
		if sp[0] < limit {
			cands = append(cands, sp)
		}
	}

	// Consecutive answer lines ("Ans: B" then "उत्तर: ख") are one key; the
	// body ends at the first of them.
	ans := cands[len(cands)-1]
	for i := len(cands) - 2; i >= 0; i-- {
		if !isBareAnswerToken(strings.Trim(text[cands[i][1]:ans[0]], " \n()[]")) {
			break
		}
		ans = cands[i]
	}

	r.body = strings.TrimRight(text[:ans[0]], " \n([")
	r.answer = text[ans[1]:limit]
	return r, nil
}

// resolveAnswer maps an answer token to a 0-based option index. The token may
// be a letter (A-H), a digit (1-8), a Hindi letter (क-ज) or the option's own
// text. A bare letter or number is read by position even when an option's
// text is that same letter.
func resolveAnswer(token string, optsEn, optsHi []string) (int, *Failure) {
	token, _, _ = strings.Cut(strings.TrimSpace(token), "\n")
	token = strings.TrimRight(strings.TrimSpace(token), ")]")
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, fail(ReasonBadAnswerIndex, "answer marker has no answer")
	}

	idx, _, ok := answerTokenIndex(token)
	if isBareAnswerToken(token) && idx < len(optsEn) {
		return idx, nil
	}

	key := collapseSpaces(strings.Trim(token, ".("))
	for i, o := range optsEn {
		if strings.EqualFold(o, key) {
			return i, nil
		}
	}
	for i, o := range optsHi {
		if o != "" && o == key {
			return i, nil
		}
	}

	if !ok {
		return 0, fail(ReasonBadAnswerIndex, "unrecognised answer %q", token)
	}
	if idx >= len(optsEn) {
		return 0, fail(ReasonBadAnswerIndex, "answer %q points past %d options", token, len(optsEn))
	}
	return idx, nil
}

// isBareAnswerToken reports whether s is nothing but a letter, digit or Hindi
// letter answer such as "C", "(b)", "Option 4" or "ख".
func isBareAnswerToken(s string) bool {
	_, end, ok := answerTokenIndex(s)
	return ok && strings.TrimSpace(s[end:]) == ""
}

// answerTokenIndex reads a leading letter, digit or Hindi letter answer.
// end is where the matched token stops.
func answerTokenIndex(token string) (idx, end int, ok bool) {
	if m := answerLetterRe.FindStringSubmatchIndex(token); m != nil {
		return int(unicode.ToUpper(rune(token[m[2]])) - 'A'), m[1], true
	}
	if m := answerDigitRe.FindStringSubmatchIndex(token); m != nil {
		return int(token[m[2]] - '1'), m[1], true
	}
	if m := answerHindiRe.FindStringSubmatchIndex(token); m != nil {
		return hindiLetterIndex[token[m[2]:m[3]]], m[1], true
	}
	return -1, 0, false
}
