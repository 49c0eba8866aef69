package parser

import (
	"fmt"
	"strings"
)

// Reason identifies why a block or passage could not be parsed.
type Reason string

const (
	ReasonInsufficientOptions   Reason = "insufficient-options"
	ReasonMissingAnswer         Reason = "missing-answer"
	ReasonBadAnswerIndex        Reason = "bad-answer-index"
	ReasonMixedLanguageOptions  Reason = "mixed-language-options"
	ReasonEmptyQuestion         Reason = "empty-question"
	ReasonRequiresExactlyN      Reason = "requiresExactlyN"
	ReasonUnrecognizedPassage   Reason = "unrecognized-passage-format"
	ReasonMissingPassage        Reason = "missing-passage"
	ReasonEmptyPassageQuestions Reason = "no-sub-questions"
)

// Failure is the recoverable error returned for a single block or passage.
// A batch collects failures and keeps going.
type Failure struct {
	Reason   Reason
	Detail   string
	Found    int
	Required int
	// SubFailures lists the sub-question blocks of a passage that did not parse.
	SubFailures []BlockFailure
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Reason))
	if f.Reason == ReasonRequiresExactlyN {
		fmt.Fprintf(&b, " (found=%d, required=%d)", f.Found, f.Required)
	}
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	return b.String()
}

func fail(reason Reason, format string, args ...any) *Failure {
	return &Failure{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// BlockFailure ties a failure to the block it came from.
type BlockFailure struct {
	Index   int
	Excerpt string
	Failure *Failure
}

const excerptRunes = 80

// Excerpt shortens a block to its first line, capped for error reports.
func Excerpt(block string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	r := []rune(line)
	if len(r) > excerptRunes {
		return string(r[:excerptRunes]) + "…"
	}
	return line
}
