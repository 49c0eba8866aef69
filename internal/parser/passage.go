package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/stemsi/examprep-backend/internal/model"
)

// DefaultSubQuestions is the usual number of questions attached to a passage.
const DefaultSubQuestions = 5

var (
	// Old format markers: "[Passage in English]", "[Passage in Hindi]".
	oldEnglishRe = regexp.MustCompile(`(?i)^\[\s*passage\s*(?:in\s*)?english\s*\]\s*:?\s*(.*)$`)
	oldHindiRe   = regexp.MustCompile(`(?i)^\[\s*passage\s*(?:in\s*)?hindi\s*\]\s*:?\s*(.*)$`)

	questionTypeRe = regexp.MustCompile(`(?i)^question\s*type\s*[:：\-]\s*comprehension\b`)

	// New format markers: "English: ...", "Hindi: ...".
	newEnglishRe = regexp.MustCompile(`(?i)^english\s*[:：\-]\s*(.*)$`)
	newHindiRe   = regexp.MustCompile(`(?i)^(?:hindi|हिंदी|हिन्दी)\s*[:：\-]\s*(.*)$`)

	passageSeparatorRe = regexp.MustCompile(`^(?:-{3,}|={3,})$`)
)

type passageFormat int

const (
	formatUnknown passageFormat = iota
	formatOld
	formatNew
)

// passageSections is a passage chunk cut into its parts.
type passageSections struct {
	title     []string
	english   []string
	hindi     []string
	questions []string
}

// ParsePassage parses one reading-comprehension chunk with exactly expected
// sub-questions. Extra sub-questions are kept out as backups. Fewer than
// expected rejects the whole passage. On failure the error is a *Failure.
//
// Two layouts are accepted:
//
//	Title (हिंदी शीर्षक)
//	English: passage text...
//	Hindi: गद्यांश...
//	1. Question? A. .. B. .. C. .. D. .. Ans: B
//
// and
//
//	[Passage in English]
//	passage text...
//	[Passage in Hindi]
//	गद्यांश...
//	Question Type: COMPREHENSION
//	<standard question blocks>
func ParsePassage(text string, expected int, opts Options) (*model.ComprehensionPassage, error) {
	p, f := parsePassage(text, expected, opts)
	if f != nil {
		return nil, f
	}
	return p, nil
}

func parsePassage(text string, expected int, opts Options) (*model.ComprehensionPassage, *Failure) {
	if expected <= 0 {
		expected = DefaultSubQuestions
	}

	sec, format := cutPassage(strings.Split(strings.TrimSpace(Normalize(text)), "\n"))
	if format == formatUnknown {
		return nil, fail(ReasonUnrecognizedPassage, "expected \"English:\" or \"[Passage in English]\" before the passage")
	}

	p := &model.ComprehensionPassage{
		ScopeKey:  opts.Scope,
		PassageEn: cleanText(strings.Join(sec.english, "\n")),
		PassageHi: cleanText(strings.Join(sec.hindi, "\n")),
	}
	if p.PassageEn == "" {
		return nil, fail(ReasonMissingPassage, "english passage text is empty")
	}
	p.TitleEn, p.TitleHi = splitBilingual(strings.Join(sec.title, "\n"))

	blocks := Tokenize(strings.Join(sec.questions, "\n"))
	if len(blocks) == 0 {
		f := fail(ReasonEmptyPassageQuestions, "no questions follow the passage")
		f.Required = expected
		return nil, f
	}

	res := ParseBlocks(blocks, opts)
	found := len(res.Questions)
	if found < expected {
		f := fail(ReasonRequiresExactlyN, "passage needs exactly %d questions", expected)
		f.Found = found
		f.Required = expected
		f.SubFailures = res.Failures
		return nil, f
	}

	key := passageKey(p.PassageEn)
	p.SubQuestions = res.Questions[:expected]
	p.ExtraQuestionsIgnored = found - expected
	for i := range p.SubQuestions {
		p.SubQuestions[i].SourceOrder = i
		p.SubQuestions[i].Fingerprint = key + ":" + p.SubQuestions[i].Fingerprint
	}
	return p, nil
}

// passageKey ties sub-question fingerprints to their passage, so the same
// question under two passages stays two entries.
func passageKey(passage string) string {
	return "p" + strconv.FormatUint(xxhash.Sum64String(strings.ToLower(collapseSpaces(passage))), 16)
}

// cutPassage walks the lines once, assigning each to the title, a passage
// language or the question region.
func cutPassage(lines []string) (passageSections, passageFormat) {
	var (
		sec     passageSections
		format  passageFormat
		current *[]string
	)
	current = &sec.title

	for _, line := range lines {
		t := strings.TrimSpace(line)

		if current == &sec.questions {
			sec.questions = append(sec.questions, line)
			continue
		}

		switch {
		case format != formatNew && oldEnglishRe.MatchString(t):
			format = formatOld
			current = &sec.english
			t = oldEnglishRe.FindStringSubmatch(t)[1]
		case format == formatOld && oldHindiRe.MatchString(t):
			current = &sec.hindi
			t = oldHindiRe.FindStringSubmatch(t)[1]
		case format == formatOld && questionTypeRe.MatchString(t):
			current = &sec.questions
			continue
		case format == formatUnknown && newEnglishRe.MatchString(t):
			format = formatNew
			current = &sec.english
			t = newEnglishRe.FindStringSubmatch(t)[1]
		case format == formatNew && current == &sec.english && newHindiRe.MatchString(t):
			current = &sec.hindi
			t = newHindiRe.FindStringSubmatch(t)[1]
		case format != formatUnknown && t != "" && startsQuestions(t):
			// Without a "Question Type" line the questions begin at the first
			// numbered or lettered line. An unnumbered question stem directly
			// above its options belongs to the questions too.
			if !isQuestionStart(t) {
				pullBackStem(current, &sec.questions)
			}
			current = &sec.questions
			sec.questions = append(sec.questions, line)
			continue
		}

		*current = append(*current, t)
	}
	return sec, format
}

func startsQuestions(line string) bool {
	return isQuestionStart(line) || hasOptionMarkers(line) || isAnswerLine(line)
}

// pullBackStem moves the last paragraph of from onto the front of to, unless
// that paragraph is all from has.
func pullBackStem(from, to *[]string) {
	lines := *from
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	start := end
	for start > 0 && strings.TrimSpace(lines[start-1]) != "" {
		start--
	}
	if start == 0 || start == end {
		return
	}
	*to = append(append([]string(nil), lines[start:end]...), *to...)
	*from = lines[:start]
}

// SplitPassages splits a paste holding several passages into one chunk per
// passage. Chunks break on "---" / "===" lines and wherever a new passage
// opens; a title line directly above a new passage goes with it.
func SplitPassages(raw string) []string {
	lines := strings.Split(Normalize(raw), "\n")

	var (
		chunks []string
		cur    []string
		opened bool
	)
	flush := func() {
		if c := strings.TrimSpace(strings.Join(cur, "\n")); c != "" {
			chunks = append(chunks, c)
		}
		cur = nil
		opened = false
	}

	for _, line := range lines {
		t := strings.TrimSpace(line)
		if passageSeparatorRe.MatchString(t) {
			flush()
			continue
		}
		if oldEnglishRe.MatchString(t) || newEnglishRe.MatchString(t) {
			if opened {
				title := takeTitle(&cur)
				flush()
				cur = title
			}
			opened = true
		}
		cur = append(cur, line)
	}
	flush()

	return chunks
}

// takeTitle removes and returns a trailing title line from lines. A title is
// a lone line after a blank line that is not part of a question.
func takeTitle(lines *[]string) []string {
	l := *lines
	end := len(l)
	for end > 0 && strings.TrimSpace(l[end-1]) == "" {
		end--
	}
	if end == 0 {
		return nil
	}
	t := strings.TrimSpace(l[end-1])
	if end >= 2 && strings.TrimSpace(l[end-2]) != "" {
		return nil
	}
	if isQuestionStart(t) || hasOptionMarkers(t) || isAnswerLine(t) || isExplanationLine(t) {
		return nil
	}
	*lines = l[:end-1]
	return []string{l[end-1]}
}
