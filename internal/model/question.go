package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default scoring applied to parsed questions when the caller does not override it.
const (
	DefaultMarks         = 1.0
	DefaultNegativeMarks = 0.0
)

// ErrInvalidQuestion is returned by Validate for records that break the option/answer invariants.
var ErrInvalidQuestion = errors.New("invalid question")

// ParsedQuestion is a normalized MCQ produced by the text parser.
// It is stored in a question bank and copied into exam parts on distribution.
type ParsedQuestion struct {
	ID                 uuid.UUID  `json:"id"`
	ScopeKey           string     `json:"scope_key"`
	Fingerprint        string     `json:"fingerprint"`
	QuestionTextEn     string     `json:"question_text_en"`
	QuestionTextHi     string     `json:"question_text_hi,omitempty"`
	OptionsEn          []string   `json:"options_en"`
	OptionsHi          []string   `json:"options_hi,omitempty"`
	CorrectAnswerIndex int        `json:"correct_answer_index"`
	ExplanationEn      string     `json:"explanation_en,omitempty"`
	ExplanationHi      string     `json:"explanation_hi,omitempty"`
	Marks              float64    `json:"marks"`
	NegativeMarks      float64    `json:"negative_marks"`
	SourceOrder        int        `json:"source_order"`
	PassageID          *uuid.UUID `json:"passage_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at,omitzero"`
}

// Validate checks the option/answer invariants every stored question must hold.
func (q *ParsedQuestion) Validate() error {
	if len(q.OptionsEn) < 2 {
		return fmt.Errorf("%w: %d options, need at least 2", ErrInvalidQuestion, len(q.OptionsEn))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.OptionsEn) {
		return fmt.Errorf("%w: answer index %d out of range [0,%d)", ErrInvalidQuestion, q.CorrectAnswerIndex, len(q.OptionsEn))
	}
	if len(q.OptionsHi) != 0 && len(q.OptionsHi) != len(q.OptionsEn) {
		return fmt.Errorf("%w: %d hindi options for %d english options", ErrInvalidQuestion, len(q.OptionsHi), len(q.OptionsEn))
	}
	return nil
}

// CorrectLetter returns the answer as an option letter (A, B, ...).
func (q *ParsedQuestion) CorrectLetter() string {
	return string(rune('A' + q.CorrectAnswerIndex))
}

// Clone returns a deep copy so exam snapshots never share slices with the bank.
func (q ParsedQuestion) Clone() ParsedQuestion {
	c := q
	c.OptionsEn = append([]string(nil), q.OptionsEn...)
	if q.OptionsHi != nil {
		c.OptionsHi = append([]string(nil), q.OptionsHi...)
	}
	if q.PassageID != nil {
		id := *q.PassageID
		c.PassageID = &id
	}
	return c
}
