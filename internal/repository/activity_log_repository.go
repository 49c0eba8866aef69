package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/examprep-backend/internal/model"
)

// ActivityLogRepository stores the import/distribution activity trail.
type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository.
func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{pool: pool}
}

// InsertActivityLogs bulk-inserts logs with COPY.
func (r *ActivityLogRepository) InsertActivityLogs(ctx context.Context, logs []model.ActivityLog) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"activity_logs"},
		[]string{"id", "kind", "scope_key", "summary", "details", "created_at"},
		pgx.CopyFromSlice(len(logs), func(i int) ([]interface{}, error) {
			l := logs[i]
			return []interface{}{l.ID, string(l.Kind), l.ScopeKey, l.Summary, []byte(l.Details), l.CreatedAt}, nil
		}),
	)
	return err
}

// ListActivityLogs returns the most recent logs first.
func (r *ActivityLogRepository) ListActivityLogs(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, scope_key, summary, details, created_at
		 FROM activity_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var l model.ActivityLog
		var details []byte
		if err := rows.Scan(&l.ID, &l.Kind, &l.ScopeKey, &l.Summary, &details, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Details = details
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
