package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/examprep-backend/internal/model"
)

const bankColumns = `id, scope_key, fingerprint, question_text_en, question_text_hi, options_en, options_hi,
	correct_answer_index, explanation_en, explanation_hi, marks, negative_marks, source_order, passage_id, created_at`

// scanQuestion reads the columns listed in bankColumns.
func scanQuestion(row pgx.Row, q *model.ParsedQuestion) error {
	return row.Scan(&q.ID, &q.ScopeKey, &q.Fingerprint, &q.QuestionTextEn, &q.QuestionTextHi,
		&q.OptionsEn, &q.OptionsHi, &q.CorrectAnswerIndex, &q.ExplanationEn, &q.ExplanationHi,
		&q.Marks, &q.NegativeMarks, &q.SourceOrder, &q.PassageID, &q.CreatedAt)
}

func collectQuestions(rows pgx.Rows) ([]model.ParsedQuestion, error) {
	defer rows.Close()

	var questions []model.ParsedQuestion
	for rows.Next() {
		var q model.ParsedQuestion
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// BankRepository stores question banks in PostgreSQL.
type BankRepository struct {
	pool *pgxpool.Pool
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(pool *pgxpool.Pool) *BankRepository {
	return &BankRepository{pool: pool}
}

// BankCommit writes one import in a single transaction.
func (r *BankRepository) BankCommit(ctx context.Context, w BankWrite) (BankResult, error) {
	var res BankResult

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return res, err
	}
	defer tx.Rollback(ctx)

	if w.Replace {
		tag, err := tx.Exec(ctx, `DELETE FROM bank_questions WHERE scope_key = $1`, w.Scope)
		if err != nil {
			return res, fmt.Errorf("clear scope: %w", err)
		}
		res.Removed = tag.RowsAffected()
		if _, err := tx.Exec(ctx, `DELETE FROM comprehension_passages WHERE scope_key = $1`, w.Scope); err != nil {
			return res, fmt.Errorf("clear passages: %w", err)
		}
	}

	questions := w.Questions
	for _, p := range w.Passages {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO comprehension_passages (id, scope_key, title_en, title_hi, passage_en, passage_hi, extra_questions_ignored)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING created_at`,
			p.ID, w.Scope, p.TitleEn, p.TitleHi, p.PassageEn, p.PassageHi, p.ExtraQuestionsIgnored,
		).Scan(&p.CreatedAt)
		if err != nil {
			return res, fmt.Errorf("insert passage: %w", err)
		}
		for i := range p.SubQuestions {
			id := p.ID
			p.SubQuestions[i].PassageID = &id
		}
		questions = append(questions, p.SubQuestions...)
	}

	if len(questions) > 0 {
		batch := &pgx.Batch{}
		for _, q := range questions {
			batch.Queue(
				`INSERT INTO bank_questions (scope_key, fingerprint, question_text_en, question_text_hi, options_en, options_hi,
				        correct_answer_index, explanation_en, explanation_hi, marks, negative_marks, source_order, passage_id)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				 ON CONFLICT (scope_key, fingerprint) DO UPDATE SET
				        question_text_en = EXCLUDED.question_text_en,
				        question_text_hi = EXCLUDED.question_text_hi,
				        options_en = EXCLUDED.options_en,
				        options_hi = EXCLUDED.options_hi,
				        correct_answer_index = EXCLUDED.correct_answer_index,
				        explanation_en = EXCLUDED.explanation_en,
				        explanation_hi = EXCLUDED.explanation_hi,
				        marks = EXCLUDED.marks,
				        negative_marks = EXCLUDED.negative_marks,
				        passage_id = EXCLUDED.passage_id,
				        updated_at = NOW()
				 RETURNING (xmax = 0) AS inserted`,
				w.Scope, q.Fingerprint, q.QuestionTextEn, q.QuestionTextHi, q.OptionsEn, nonNil(q.OptionsHi),
				q.CorrectAnswerIndex, q.ExplanationEn, q.ExplanationHi, q.Marks, q.NegativeMarks, q.SourceOrder, q.PassageID,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range questions {
			var inserted bool
			if err := br.QueryRow().Scan(&inserted); err != nil {
				br.Close()
				return res, fmt.Errorf("upsert question: %w", err)
			}
			if inserted {
				res.Inserted++
			} else {
				res.Updated++
			}
		}
		if err := br.Close(); err != nil {
			return res, err
		}
	}

	// Re-imported passages move their questions to the new passage row.
	if len(w.Passages) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM comprehension_passages p
			 WHERE p.scope_key = $1
			   AND NOT EXISTS (SELECT 1 FROM bank_questions q WHERE q.passage_id = p.id)`, w.Scope); err != nil {
			return res, fmt.Errorf("prune passages: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// BankList returns every question of a scope in import order.
func (r *BankRepository) BankList(ctx context.Context, scope string) ([]model.ParsedQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bankColumns+` FROM bank_questions WHERE scope_key = $1 ORDER BY seq`, scope)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// BankPage returns one page of a scope plus the scope's total size.
func (r *BankRepository) BankPage(ctx context.Context, scope string, limit, offset int) ([]model.ParsedQuestion, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bank_questions WHERE scope_key = $1`, scope,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+bankColumns+` FROM bank_questions WHERE scope_key = $1
		 ORDER BY seq LIMIT $2 OFFSET $3`, scope, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	questions, err := collectQuestions(rows)
	return questions, total, err
}

// BankClear removes a scope's questions and passages. Questions already
// copied into exams are separate rows and stay untouched.
func (r *BankRepository) BankClear(ctx context.Context, scope string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM bank_questions WHERE scope_key = $1`, scope)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comprehension_passages WHERE scope_key = $1`, scope); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), tx.Commit(ctx)
}

// BankScopes lists every non-empty scope with its size.
func (r *BankRepository) BankScopes(ctx context.Context) ([]model.ScopeSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT scope_key, COUNT(*), COUNT(DISTINCT passage_id), MAX(updated_at)
		 FROM bank_questions
		 GROUP BY scope_key
		 ORDER BY scope_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scopes []model.ScopeSummary
	for rows.Next() {
		var s model.ScopeSummary
		if err := rows.Scan(&s.ScopeKey, &s.QuestionCount, &s.PassageCount, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
