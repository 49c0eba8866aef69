package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is the read-only view of an exam used to validate distribution targets.
type Exam struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// ExamPart is a section of an exam (e.g. "Section A") owning its own question list.
type ExamPart struct {
	ID            uuid.UUID `json:"id"`
	ExamID        uuid.UUID `json:"exam_id"`
	Name          string    `json:"name"`
	OrderNum      int       `json:"order_num"`
	QuestionCount int       `json:"question_count"`
}

// TargetSummary reports what a single distribution target received.
type TargetSummary struct {
	ExamID         uuid.UUID `json:"exam_id"`
	PartID         uuid.UUID `json:"part_id"`
	ExamTitle      string    `json:"exam_title"`
	PartName       string    `json:"part_name"`
	QuestionsAdded int       `json:"questions_added"`
}

// TargetFailure records a distribution target that was skipped or could not be written.
type TargetFailure struct {
	Scope  string    `json:"scope,omitempty"`
	ExamID uuid.UUID `json:"exam_id"`
	PartID uuid.UUID `json:"part_id"`
	Reason string    `json:"reason"`
}

// DistributionReport is returned by a distribution run and cached as the scope's last run.
type DistributionReport struct {
	Scopes        []string        `json:"scopes"`
	BankSize      int             `json:"bank_size"`
	Used          int             `json:"used"`
	Targets       []TargetSummary `json:"targets"`
	Errors        []TargetFailure `json:"errors"`
	DistributedAt time.Time       `json:"distributed_at"`
}

// ExamImportRequest is the payload for importing pasted text directly into an exam part.
type ExamImportRequest struct {
	Text          string   `json:"text" binding:"required"`
	Mode          string   `json:"mode" binding:"omitempty,importmode"`
	Marks         *float64 `json:"marks" binding:"omitempty,gt=0,max=100"`
	NegativeMarks *float64 `json:"negative_marks" binding:"omitempty,min=0,max=100"`
}

// DistributionTargetRequest names one exam part and how many questions it should receive.
type DistributionTargetRequest struct {
	ExamID uuid.UUID `json:"exam_id" binding:"required"`
	PartID uuid.UUID `json:"part_id" binding:"required"`
	Quota  int       `json:"quota" binding:"required,min=1,max=1000"`
}

// DistributionSectionRequest distributes one bank scope over its targets.
type DistributionSectionRequest struct {
	Scope   string                      `json:"scope" binding:"required,max=255"`
	Targets []DistributionTargetRequest `json:"targets" binding:"required,min=1,dive"`
}

// DistributeRequest is the payload for a distribution run. One section is the
// common case; Section A / Section B splits send two.
type DistributeRequest struct {
	Sections []DistributionSectionRequest `json:"sections" binding:"required,min=1,max=10,dive"`
}

// CreateExamRequest is the payload for registering an exam and its parts.
type CreateExamRequest struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Category string   `json:"category" binding:"omitempty,max=100"`
	Parts    []string `json:"parts" binding:"required,min=1,max=20,dive,required,max=255"`
}
