package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func newFormatPassage(title string, questions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (नदियाँ)\n", title)
	b.WriteString("English: Rivers carry water to the sea.\nThey support farming along their banks.\n")
	b.WriteString("Hindi: नदियाँ पानी को समुद्र तक ले जाती हैं।\n")
	for i := 1; i <= questions; i++ {
		fmt.Fprintf(&b, "%d. %s question number %d? A. Water B. Sand C. Oil D. Milk Ans: A\n", i, title, i)
	}
	return b.String()
}

func oldFormatPassage(questions int) string {
	var b strings.Builder
	b.WriteString("[Passage in English]\nThe sun is a star at the centre of our solar system.\n")
	b.WriteString("[Passage in Hindi]\nसूर्य एक तारा है।\n")
	b.WriteString("Question Type: COMPREHENSION\n\n")
	for i := 1; i <= questions; i++ {
		fmt.Fprintf(&b, "%d. Sun fact number %d?\nA. Star\nB. Planet\nC. Moon\nD. Comet\nAns: A\n\n", i, i)
	}
	return b.String()
}

func TestParsePassage_NewFormat(t *testing.T) {
	p, err := ParsePassage(newFormatPassage("Rivers", 5), 5, DefaultOptions("rc"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if p.TitleEn != "Rivers" || p.TitleHi != "नदियाँ" {
		t.Errorf("unexpected title: %q / %q", p.TitleEn, p.TitleHi)
	}
	if p.PassageEn != "Rivers carry water to the sea.\nThey support farming along their banks." {
		t.Errorf("unexpected english passage: %q", p.PassageEn)
	}
	if p.PassageHi != "नदियाँ पानी को समुद्र तक ले जाती हैं।" {
		t.Errorf("unexpected hindi passage: %q", p.PassageHi)
	}
	if len(p.SubQuestions) != 5 || p.ExtraQuestionsIgnored != 0 {
		t.Fatalf("expected 5 sub-questions and none ignored, got %d / %d", len(p.SubQuestions), p.ExtraQuestionsIgnored)
	}
	for i, q := range p.SubQuestions {
		if q.SourceOrder != i {
			t.Errorf("sub-question %d: expected source order %d, got %d", i, i, q.SourceOrder)
		}
		if !strings.HasPrefix(q.Fingerprint, "p") {
			t.Errorf("sub-question %d: expected passage-scoped fingerprint, got %q", i, q.Fingerprint)
		}
	}
}

func TestParsePassage_OldFormat(t *testing.T) {
	p, err := ParsePassage(oldFormatPassage(5), 5, DefaultOptions("rc"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if p.PassageEn != "The sun is a star at the centre of our solar system." {
		t.Errorf("unexpected english passage: %q", p.PassageEn)
	}
	if p.PassageHi != "सूर्य एक तारा है।" {
		t.Errorf("unexpected hindi passage: %q", p.PassageHi)
	}
	if len(p.SubQuestions) != 5 {
		t.Fatalf("expected 5 sub-questions, got %d", len(p.SubQuestions))
	}
	if p.SubQuestions[4].QuestionTextEn != "Sun fact number 5?" {
		t.Errorf("unexpected last question: %q", p.SubQuestions[4].QuestionTextEn)
	}
}

func TestParsePassage_Exactness(t *testing.T) {
	t.Run("too few", func(t *testing.T) {
		_, err := ParsePassage(newFormatPassage("Rivers", 4), 5, DefaultOptions("rc"))
		var f *Failure
		if !errors.As(err, &f) {
			t.Fatalf("expected *Failure, got %v", err)
		}
		if f.Reason != ReasonRequiresExactlyN || f.Found != 4 || f.Required != 5 {
			t.Errorf("expected requiresExactlyN found=4 required=5, got %v", f)
		}
	})

	t.Run("too many", func(t *testing.T) {
		p, err := ParsePassage(newFormatPassage("Rivers", 7), 5, DefaultOptions("rc"))
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(p.SubQuestions) != 5 || p.ExtraQuestionsIgnored != 2 {
			t.Errorf("expected 5 kept and 2 ignored, got %d / %d", len(p.SubQuestions), p.ExtraQuestionsIgnored)
		}
		if p.SubQuestions[4].QuestionTextEn != "Rivers question number 5?" {
			t.Errorf("expected the first five questions to be kept, last is %q", p.SubQuestions[4].QuestionTextEn)
		}
	})
}

func TestParsePassage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason Reason
	}{
		{"no markers", "Just some text\n1. Q? A. x B. y Ans: A", ReasonUnrecognizedPassage},
		{"empty english", "English:\nHindi: कुछ\n1. Q? A. x B. y Ans: A", ReasonMissingPassage},
		{"no questions", "English: A passage with nothing after it.", ReasonEmptyPassageQuestions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePassage(tt.text, 5, DefaultOptions("rc"))
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, f.Reason)
			}
		})
	}
}

func TestSplitPassages(t *testing.T) {
	raw := newFormatPassage("Rivers", 5) + "\n" + newFormatPassage("Mountains", 5) + "---\n" + oldFormatPassage(5)

	chunks := SplitPassages(raw)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[1], "Mountains (नदियाँ)") {
		t.Errorf("expected title to move with its passage, got %q", Excerpt(chunks[1]))
	}

	for i, c := range chunks {
		if _, err := ParsePassage(c, 5, DefaultOptions("rc")); err != nil {
			t.Errorf("chunk %d: expected no error, got: %v", i, err)
		}
	}
}
