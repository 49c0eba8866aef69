package parser

import (
	"regexp"
	"strings"

	"github.com/stemsi/examprep-backend/internal/model"
)

// Options carries the defaults applied to every question parsed in one call.
type Options struct {
	Scope         string
	Marks         float64
	NegativeMarks float64
}

// DefaultOptions returns options with the standard 1 / 0 scoring.
func DefaultOptions(scope string) Options {
	return Options{
		Scope:         scope,
		Marks:         model.DefaultMarks,
		NegativeMarks: model.DefaultNegativeMarks,
	}
}

// ParseBlock parses one question block. On failure the returned error is a *Failure.
//
// Accepted layouts include a single line ("What is 2+2? A. 3 B. 4 C. 5 D. 6 Ans: B"),
// one option per line, "(a)" style markers, "Options: 3, 4, 5, 6" lists, and
// Hindi renderings in parentheses, after " / " or on their own lines.
func ParseBlock(block string, opts Options) (model.ParsedQuestion, error) {
	q, f := parseBlock(block, opts)
	if f != nil {
		return model.ParsedQuestion{}, f
	}
	return q, nil
}

func parseBlock(block string, opts Options) (model.ParsedQuestion, *Failure) {
	text := strings.TrimSpace(Normalize(block))

	r, f := splitRegions(text)
	if f != nil {
		return model.ParsedQuestion{}, f
	}

	question, rawOpts, f := splitOptions(r.body)
	if f != nil {
		return model.ParsedQuestion{}, f
	}

	q := model.ParsedQuestion{
		ScopeKey:      opts.Scope,
		Marks:         opts.Marks,
		NegativeMarks: opts.NegativeMarks,
	}

	q.QuestionTextEn, q.QuestionTextHi = splitBilingual(stripNumbering(question))
	if q.QuestionTextEn == "" {
		return model.ParsedQuestion{}, fail(ReasonEmptyQuestion, "no question text before the options")
	}

	q.OptionsEn, q.OptionsHi, f = splitOptionLanguages(rawOpts)
	if f != nil {
		return model.ParsedQuestion{}, f
	}

	q.CorrectAnswerIndex, f = resolveAnswer(r.answer, q.OptionsEn, q.OptionsHi)
	if f != nil {
		return model.ParsedQuestion{}, f
	}

	q.ExplanationEn, q.ExplanationHi = splitBilingual(r.explanation)
	q.Fingerprint = Fingerprint(&q)

	if err := q.Validate(); err != nil {
		return model.ParsedQuestion{}, fail(ReasonBadAnswerIndex, "%v", err)
	}
	return q, nil
}

// stripNumbering removes "12.", "Q12." or "प्रश्न 12:" style numbering.
func stripNumbering(s string) string {
	s = strings.TrimSpace(s)
	if loc := questionStartRe.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
	}
	return strings.TrimSpace(s)
}

// splitOptions separates the question text from the raw option segments.
// Upper-case markers win; lower-case and Hindi markers are fallbacks.
func splitOptions(body string) (question string, options []string, f *Failure) {
	found := 0
	for _, markers := range [][]*regexp.Regexp{upperOptionMarkers, lowerOptionMarkers, hindiOptionMarkers} {
		spans := scanOptionMarkers(body, markers)
		found = max(found, len(spans))
		if len(spans) < 2 {
			continue
		}
		options = make([]string, len(spans))
		for i, sp := range spans {
			end := len(body)
			if i+1 < len(spans) {
				end = spans[i+1][0]
			}
			options[i] = strings.TrimSpace(body[sp[1]:end])
			if options[i] == "" {
				return "", nil, fail(ReasonInsufficientOptions, "option %c is empty", rune('A'+i))
			}
		}
		return body[:spans[0][0]], options, nil
	}

	if question, options, ok := splitOptionsLine(body); ok {
		return question, options, nil
	}
	return "", nil, fail(ReasonInsufficientOptions, "found %d lettered options, need at least 2", found)
}

// splitOptionsLine handles "Options: 3, 4, 5, 6" with an optional
// "विकल्प: तीन, चार, पाँच, छह" line holding the Hindi renderings.
func splitOptionsLine(body string) (question string, options []string, ok bool) {
	locs := optionsLineRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return "", nil, false
	}

	var en, hi []string
	for _, l := range locs {
		items := splitList(body[l[4]:l[5]])
		switch {
		case en == nil:
			en = items
		case hi == nil && body[l[2]:l[3]] == "विकल्प":
			hi = items
		}
	}
	if len(en) < 2 {
		return "", nil, false
	}

	options = make([]string, len(en))
	for i, o := range en {
		if len(hi) == len(en) && !devanagariDominant(o) {
			o += " (" + hi[i] + ")"
		}
		options[i] = o
	}
	return body[:locs[0][0]], options, true
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitOptionLanguages splits every option into English and Hindi. Options
// without letters (numbers, symbols) count as both languages. Lists where
// only some options carry Hindi are rejected rather than stored misaligned.
func splitOptionLanguages(raw []string) (en, hi []string, f *Failure) {
	en = make([]string, len(raw))
	hi = make([]string, len(raw))
	bilingual, englishOnly := 0, 0
	for i, r := range raw {
		en[i], hi[i] = splitBilingual(r)
		switch {
		case hi[i] != "":
			bilingual++
		case languageNeutral(en[i]):
			hi[i] = en[i]
		default:
			englishOnly++
		}
	}
	switch {
	case bilingual == 0:
		return en, nil, nil
	case englishOnly > 0:
		return nil, nil, fail(ReasonMixedLanguageOptions, "%d of %d options have a Hindi rendering", bilingual, len(raw))
	}
	return en, hi, nil
}

// BatchResult collects the outcome of parsing a list of blocks.
type BatchResult struct {
	Total     int
	Questions []model.ParsedQuestion
	Failures  []BlockFailure
}

// ParseBlocks parses every block independently. A failing block is recorded
// and never stops the batch. SourceOrder is the block's position in the paste.
func ParseBlocks(blocks []string, opts Options) BatchResult {
	res := BatchResult{Total: len(blocks)}
	for i, b := range blocks {
		q, f := parseBlock(b, opts)
		if f != nil {
			res.Failures = append(res.Failures, BlockFailure{Index: i, Excerpt: Excerpt(b), Failure: f})
			continue
		}
		q.SourceOrder = i
		res.Questions = append(res.Questions, q)
	}
	return res
}

// ParseText tokenizes raw text and parses every block.
func ParseText(raw string, opts Options) BatchResult {
	return ParseBlocks(Tokenize(raw), opts)
}
