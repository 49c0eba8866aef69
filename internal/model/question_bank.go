package model

import (
	"time"

	"github.com/google/uuid"
)

// ComprehensionPassage is a reading passage shared by a fixed number of sub-questions.
type ComprehensionPassage struct {
	ID                    uuid.UUID        `json:"id"`
	ScopeKey              string           `json:"scope_key"`
	TitleEn               string           `json:"title_en"`
	TitleHi               string           `json:"title_hi,omitempty"`
	PassageEn             string           `json:"passage_en"`
	PassageHi             string           `json:"passage_hi,omitempty"`
	SubQuestions          []ParsedQuestion `json:"sub_questions"`
	ExtraQuestionsIgnored int              `json:"extra_questions_ignored"`
	CreatedAt             time.Time        `json:"created_at,omitzero"`
}

// ScopeSummary describes one bank scope.
type ScopeSummary struct {
	ScopeKey      string    `json:"scope_key"`
	QuestionCount int       `json:"question_count"`
	PassageCount  int       `json:"passage_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImportMode controls whether an import keeps or discards existing questions.
type ImportMode string

const (
	ImportModeAppend  ImportMode = "append"
	ImportModeReplace ImportMode = "replace"
)

// ImportKind selects the parser used for an import.
type ImportKind string

const (
	ImportKindQuestion ImportKind = "question"
	ImportKindPassage  ImportKind = "passage"
)

// ImportFailure itemizes one block or passage that could not be parsed.
type ImportFailure struct {
	Index    int    `json:"index"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail,omitempty"`
	Excerpt  string `json:"excerpt"`
	Found    int    `json:"found,omitempty"`
	Required int    `json:"required,omitempty"`
}

// ImportReport is returned by every import call.
type ImportReport struct {
	ScopeKey              string          `json:"scope_key,omitempty"`
	ExamID                *uuid.UUID      `json:"exam_id,omitempty"`
	PartID                *uuid.UUID      `json:"part_id,omitempty"`
	Mode                  ImportMode      `json:"mode"`
	Kind                  ImportKind      `json:"kind"`
	Total                 int             `json:"total"`
	Parsed                int             `json:"parsed"`
	Imported              int             `json:"imported"`
	Updated               int             `json:"updated"`
	Failed                int             `json:"failed"`
	Removed               int64           `json:"removed"`
	PassagesImported      int             `json:"passages_imported,omitempty"`
	ExtraQuestionsIgnored int             `json:"extra_questions_ignored,omitempty"`
	WasLimited            bool            `json:"was_limited"`
	OriginalParsed        int             `json:"original_parsed,omitempty"`
	Failures              []ImportFailure `json:"failures"`
}

// ImportRequest is the payload for importing pasted text into a bank scope.
type ImportRequest struct {
	Text             string   `json:"text" binding:"required"`
	Mode             string   `json:"mode" binding:"omitempty,importmode"`
	Kind             string   `json:"kind" binding:"omitempty,importkind"`
	SubQuestionCount int      `json:"sub_question_count" binding:"omitempty,min=1,max=20"`
	Marks            *float64 `json:"marks" binding:"omitempty,gt=0,max=100"`
	NegativeMarks    *float64 `json:"negative_marks" binding:"omitempty,min=0,max=100"`
}
