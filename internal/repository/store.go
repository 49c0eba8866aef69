package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stemsi/examprep-backend/internal/model"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// BankWrite is one import committed into a bank scope.
type BankWrite struct {
	Scope string
	// Replace clears the scope, passages included, before the new rows are added.
	Replace   bool
	Questions []model.ParsedQuestion
	// Passages are stored together with their sub-questions.
	Passages []*model.ComprehensionPassage
}

// BankResult counts what a BankWrite changed.
type BankResult struct {
	Inserted int
	Updated  int
	Removed  int64
}

// BankStore persists question banks keyed by (scope, fingerprint). A
// question whose fingerprint already exists in the scope updates that entry
// and keeps its position.
type BankStore interface {
	BankCommit(ctx context.Context, w BankWrite) (BankResult, error)
	BankList(ctx context.Context, scope string) ([]model.ParsedQuestion, error)
	BankPage(ctx context.Context, scope string, limit, offset int) ([]model.ParsedQuestion, int, error)
	BankClear(ctx context.Context, scope string) (int64, error)
	BankScopes(ctx context.Context) ([]model.ScopeSummary, error)
}

// ExamStore reads exam parts and replaces their question lists.
type ExamStore interface {
	// CreateExam stores an exam with its parts, filling in their IDs.
	CreateExam(ctx context.Context, exam *model.Exam, parts []model.ExamPart) error
	GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetPart(ctx context.Context, examID, partID uuid.UUID) (*model.ExamPart, error)
	ExamQuestionsList(ctx context.Context, examID, partID uuid.UUID) ([]model.ParsedQuestion, error)
	ExamQuestionsReplace(ctx context.Context, examID, partID uuid.UUID, qs []model.ParsedQuestion) error
}

// ActivityLogStore persists the admin activity trail.
type ActivityLogStore interface {
	InsertActivityLogs(ctx context.Context, logs []model.ActivityLog) error
	ListActivityLogs(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

var (
	_ BankStore        = (*BankRepository)(nil)
	_ ExamStore        = (*ExamRepository)(nil)
	_ ActivityLogStore = (*ActivityLogRepository)(nil)

	_ BankStore        = (*MemoryStore)(nil)
	_ ExamStore        = (*MemoryStore)(nil)
	_ ActivityLogStore = (*MemoryStore)(nil)
)
