package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/repository"
)

// ExamService registers exams and exposes the questions their parts hold.
type ExamService struct {
	exams repository.ExamStore
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams repository.ExamStore, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// Create stores an exam with one part per name, ordered as given.
func (s *ExamService) Create(ctx context.Context, req model.CreateExamRequest) (*model.Exam, []model.ExamPart, error) {
	exam := &model.Exam{Title: req.Title, Category: req.Category}
	parts := make([]model.ExamPart, len(req.Parts))
	for i, name := range req.Parts {
		parts[i] = model.ExamPart{Name: name, OrderNum: i + 1}
	}

	if err := s.exams.CreateExam(ctx, exam, parts); err != nil {
		return nil, nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int("parts", len(parts)).Msg("Exam created")
	return exam, parts, nil
}

// PartQuestions returns a part's current question list.
func (s *ExamService) PartQuestions(ctx context.Context, examID, partID uuid.UUID) (*model.ExamPart, []model.ParsedQuestion, error) {
	part, err := s.exams.GetPart(ctx, examID, partID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrPartNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.exams.ExamQuestionsList(ctx, examID, partID)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.ParsedQuestion{}
	}
	return part, questions, nil
}
