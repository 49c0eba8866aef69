package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/examprep-backend/internal/model"
)

// ExamRepository handles exam part lookups and their question lists.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// CreateExam inserts an exam and its parts in one transaction.
func (r *ExamRepository) CreateExam(ctx context.Context, exam *model.Exam, parts []model.ExamPart) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if exam.ID == uuid.Nil {
		exam.ID = uuid.New()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO exams (id, title, category) VALUES ($1, $2, $3) RETURNING created_at`,
		exam.ID, exam.Title, exam.Category,
	).Scan(&exam.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}

	for i := range parts {
		if parts[i].ID == uuid.Nil {
			parts[i].ID = uuid.New()
		}
		parts[i].ExamID = exam.ID
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_parts (id, exam_id, name, order_num) VALUES ($1, $2, $3, $4)`,
			parts[i].ID, exam.ID, parts[i].Name, parts[i].OrderNum,
		); err != nil {
			return fmt.Errorf("insert part %q: %w", parts[i].Name, err)
		}
	}

	return tx.Commit(ctx)
}

// GetExam retrieves an exam by its UUID.
func (r *ExamRepository) GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, category, created_at FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Category, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetPart retrieves a part of an exam with its current question count.
func (r *ExamRepository) GetPart(ctx context.Context, examID, partID uuid.UUID) (*model.ExamPart, error) {
	p := &model.ExamPart{}
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.exam_id, p.name, p.order_num,
		        (SELECT COUNT(*) FROM exam_questions q WHERE q.part_id = p.id)
		 FROM exam_parts p WHERE p.id = $1 AND p.exam_id = $2`, partID, examID,
	).Scan(&p.ID, &p.ExamID, &p.Name, &p.OrderNum, &p.QuestionCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ExamQuestionsList returns the live question list of an exam part.
func (r *ExamRepository) ExamQuestionsList(ctx context.Context, examID, partID uuid.UUID) ([]model.ParsedQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, scope_key, fingerprint, question_text_en, question_text_hi, options_en, options_hi,
		        correct_answer_index, explanation_en, explanation_hi, marks, negative_marks, position, passage_id, created_at
		 FROM exam_questions WHERE exam_id = $1 AND part_id = $2
		 ORDER BY position`, examID, partID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// ExamQuestionsReplace swaps the question list of an exam part for copies of qs.
// The copies keep a reference to their bank row but never follow later bank edits.
func (r *ExamRepository) ExamQuestionsReplace(ctx context.Context, examID, partID uuid.UUID, qs []model.ParsedQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1 AND part_id = $2`, examID, partID); err != nil {
		return fmt.Errorf("clear part: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"exam_questions"},
		[]string{"id", "exam_id", "part_id", "position", "source_question_id", "scope_key", "fingerprint",
			"question_text_en", "question_text_hi", "options_en", "options_hi", "correct_answer_index",
			"explanation_en", "explanation_hi", "marks", "negative_marks", "passage_id"},
		pgx.CopyFromSlice(len(qs), func(i int) ([]interface{}, error) {
			q := qs[i]
			var source *uuid.UUID
			if q.ID != uuid.Nil {
				source = &q.ID
			}
			return []interface{}{
				uuid.New(), examID, partID, i, source, q.ScopeKey, q.Fingerprint,
				q.QuestionTextEn, q.QuestionTextHi, q.OptionsEn, nonNil(q.OptionsHi), q.CorrectAnswerIndex,
				q.ExplanationEn, q.ExplanationHi, q.Marks, q.NegativeMarks, q.PassageID,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}

	return tx.Commit(ctx)
}
