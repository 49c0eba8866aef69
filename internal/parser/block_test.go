package parser

import (
	"errors"
	"slices"
	"testing"
)

func TestParseBlock_SingleLine(t *testing.T) {
	q, err := ParseBlock("What is 2+2? A. 3 B. 4 C. 5 D. 6 Ans: B", DefaultOptions("math"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if q.QuestionTextEn != "What is 2+2?" {
		t.Errorf("expected question %q, got %q", "What is 2+2?", q.QuestionTextEn)
	}
	if want := []string{"3", "4", "5", "6"}; !slices.Equal(q.OptionsEn, want) {
		t.Errorf("expected options %v, got %v", want, q.OptionsEn)
	}
	if q.CorrectAnswerIndex != 1 {
		t.Errorf("expected answer index 1, got %d", q.CorrectAnswerIndex)
	}
	if q.OptionsHi != nil || q.QuestionTextHi != "" {
		t.Errorf("expected no hindi text, got %q / %v", q.QuestionTextHi, q.OptionsHi)
	}
	if q.Marks != 1 || q.NegativeMarks != 0 {
		t.Errorf("expected default marks 1/0, got %v/%v", q.Marks, q.NegativeMarks)
	}
	if q.ScopeKey != "math" || q.Fingerprint == "" {
		t.Errorf("expected scope and fingerprint to be set, got %q / %q", q.ScopeKey, q.Fingerprint)
	}
}

func TestParseBlock_MultiLineBilingual(t *testing.T) {
	block := `1. What is the capital of India? (भारत की राजधानी क्या है?)
A. Delhi (दिल्ली)
B. Mumbai (मुंबई)
C. Kolkata (कोलकाता)
D. Chennai (चेन्नई)
Ans: A
Explanation: Delhi is the capital.`

	q, err := ParseBlock(block, DefaultOptions("gk"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if q.QuestionTextEn != "What is the capital of India?" {
		t.Errorf("unexpected english question: %q", q.QuestionTextEn)
	}
	if q.QuestionTextHi != "भारत की राजधानी क्या है?" {
		t.Errorf("unexpected hindi question: %q", q.QuestionTextHi)
	}
	if want := []string{"Delhi", "Mumbai", "Kolkata", "Chennai"}; !slices.Equal(q.OptionsEn, want) {
		t.Errorf("expected options %v, got %v", want, q.OptionsEn)
	}
	if want := []string{"दिल्ली", "मुंबई", "कोलकाता", "चेन्नई"}; !slices.Equal(q.OptionsHi, want) {
		t.Errorf("expected hindi options %v, got %v", want, q.OptionsHi)
	}
	if q.CorrectAnswerIndex != 0 {
		t.Errorf("expected answer index 0, got %d", q.CorrectAnswerIndex)
	}
	if q.ExplanationEn != "Delhi is the capital." {
		t.Errorf("unexpected explanation: %q", q.ExplanationEn)
	}
}

func TestParseBlock_AnswerForms(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  int
	}{
		{"letter", "Capital? A. Delhi B. Mumbai C. Pune D. Goa Ans: C", 2},
		{"lowercase bracketed", "What is 2+2? (a) 3 (b) 4 (c) 5 (d) 6 Ans: (b)", 1},
		{"digit", "Capital? A. Delhi B. Mumbai C. Pune D. Goa Answer: 3", 2},
		{"option text", "Capital? A. Delhi B. Mumbai C. Pune D. Goa Ans: Mumbai", 1},
		{"hindi letter", "Capital? A. Delhi B. Mumbai C. Pune D. Goa\nउत्तर: ख", 1},
		{"option prefix", "Capital? A. Delhi B. Mumbai C. Pune D. Goa\nCorrect Answer: Option D", 3},
		{"options line", "Which is a prime number?\nOptions: 4, 6, 7, 9\nAns: 7", 2},
		{"letter series", "Reverse of A, B, C, D: which is third? A. D B. C C. B D. A Ans: C", 2},
		{"letter options", "Which letter is a vowel? A. B B. A C. Z D. Y Ans: A", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseBlock(tt.block, DefaultOptions("test"))
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if q.CorrectAnswerIndex != tt.want {
				t.Errorf("expected answer index %d, got %d", tt.want, q.CorrectAnswerIndex)
			}
			if err := q.Validate(); err != nil {
				t.Errorf("parsed question fails validation: %v", err)
			}
		})
	}
}

func TestParseBlock_BilingualAnswerLines(t *testing.T) {
	q, err := ParseBlock("Capital? A. Delhi B. Mumbai C. Pune D. Goa\nAns: B\nउत्तर: ख", DefaultOptions("test"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if q.CorrectAnswerIndex != 1 {
		t.Errorf("expected answer index 1, got %d", q.CorrectAnswerIndex)
	}
	if last := q.OptionsEn[len(q.OptionsEn)-1]; last != "Goa" {
		t.Errorf("expected last option %q, got %q", "Goa", last)
	}
}

func TestParseBlock_Failures(t *testing.T) {
	tests := []struct {
		name   string
		block  string
		reason Reason
	}{
		{"no answer", "What is 2+2? A. 3 B. 4 C. 5 D. 6", ReasonMissingAnswer},
		{"one option", "What is 2+2? A. 4 Ans: A", ReasonInsufficientOptions},
		{"answer out of range", "What is 2+2? A. 3 B. 4 C. 5 D. 6 Ans: F", ReasonBadAnswerIndex},
		{"unreadable answer", "What is 2+2? A. 3 B. 4 Ans: ?", ReasonBadAnswerIndex},
		{"no question", "A. 3 B. 4 C. 5 D. 6 Ans: B", ReasonEmptyQuestion},
		{"mixed option languages", "Capital? A. Delhi (दिल्ली) B. Mumbai C. Pune D. Goa Ans: A", ReasonMixedLanguageOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlock(tt.block, DefaultOptions("test"))
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q (%v)", tt.reason, f.Reason, f)
			}
		})
	}
}

func TestParseBlock_QuestionTextMayLookLikeOption(t *testing.T) {
	q, err := ParseBlock("Who was called the Missile Man? A. P. J. Abdul Kalam is the answer to which? A. Kalam B. Bhabha C. Sarabhai D. Raman Ans: A", DefaultOptions("gk"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if want := []string{"Kalam", "Bhabha", "Sarabhai", "Raman"}; !slices.Equal(q.OptionsEn, want) {
		t.Errorf("expected options %v, got %v", want, q.OptionsEn)
	}
}

func TestParseBlocks_IsolatesFailures(t *testing.T) {
	blocks := []string{
		"What is 2+2? A. 3 B. 4 C. 5 D. 6 Ans: B",
		"Broken block without options",
		"What is 3+3? A. 5 B. 6 Ans: B",
	}

	res := ParseBlocks(blocks, DefaultOptions("math"))
	if res.Total != 3 {
		t.Errorf("expected total 3, got %d", res.Total)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(res.Questions))
	}
	if len(res.Failures) != 1 || res.Failures[0].Index != 1 {
		t.Fatalf("expected one failure at index 1, got %+v", res.Failures)
	}
	if res.Failures[0].Failure.Reason != ReasonMissingAnswer {
		t.Errorf("expected missing-answer, got %q", res.Failures[0].Failure.Reason)
	}
	if res.Questions[1].SourceOrder != 2 {
		t.Errorf("expected source order 2, got %d", res.Questions[1].SourceOrder)
	}
}

func TestParseBlock_CustomMarks(t *testing.T) {
	opts := Options{Scope: "neg", Marks: 2, NegativeMarks: 0.5}
	q, err := ParseBlock("What is 2+2? A. 3 B. 4 Ans: B", opts)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if q.Marks != 2 || q.NegativeMarks != 0.5 {
		t.Errorf("expected marks 2/0.5, got %v/%v", q.Marks, q.NegativeMarks)
	}
}

func TestFingerprint_IgnoresCaseAndSpacing(t *testing.T) {
	a, err := ParseBlock("What is 2+2? A. 3 B. 4 Ans: B", DefaultOptions("x"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseBlock("what  is 2+2?\nA. 3\nB. 4\nAns: A", DefaultOptions("x"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("expected equal fingerprints, got %q and %q", a.Fingerprint, b.Fingerprint)
	}
}
