package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/model"
)

// flakyStore fails bulk inserts and rejects single rows listed in bad.
type flakyStore struct {
	bad    map[uuid.UUID]error
	stored []model.ActivityLog
}

func (s *flakyStore) InsertActivityLogs(_ context.Context, logs []model.ActivityLog) error {
	if len(logs) > 1 {
		return errors.New("copy failed")
	}
	if err := s.bad[logs[0].ID]; err != nil {
		return err
	}
	s.stored = append(s.stored, logs...)
	return nil
}

func (s *flakyStore) ListActivityLogs(context.Context, int) ([]model.ActivityLog, error) {
	return s.stored, nil
}

func TestFlushSafe_FallsBackAndRequeues(t *testing.T) {
	ok1, dup, broken, ok2 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	store := &flakyStore{bad: map[uuid.UUID]error{
		dup:    &pgconn.PgError{Code: uniqueViolation},
		broken: errors.New("connection reset"),
	}}

	w := NewActivityLogWorker(store, nil, zerolog.Nop())
	var requeued []model.ActivityLog
	w.requeue = func(_ context.Context, items []model.ActivityLog) { requeued = append(requeued, items...) }

	batch := []model.ActivityLog{{ID: ok1}, {ID: dup}, {ID: broken}, {ID: ok2}}
	w.flushSafe(context.Background(), batch)

	if len(store.stored) != 2 || store.stored[0].ID != ok1 || store.stored[1].ID != ok2 {
		t.Errorf("expected the two good rows to be stored, got %+v", store.stored)
	}
	if len(requeued) != 1 || requeued[0].ID != broken {
		t.Errorf("expected only the broken row to be requeued, got %+v", requeued)
	}
}

func TestFlushSafe_BulkPath(t *testing.T) {
	var calls int
	store := &countingStore{calls: &calls}
	w := NewActivityLogWorker(store, nil, zerolog.Nop())
	w.requeue = func(context.Context, []model.ActivityLog) { t.Error("expected no requeue") }

	w.flushSafe(context.Background(), []model.ActivityLog{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}})
	if calls != 1 {
		t.Errorf("expected a single bulk insert, got %d calls", calls)
	}

	w.flushSafe(context.Background(), nil)
	if calls != 1 {
		t.Errorf("expected empty flush to skip the store, got %d calls", calls)
	}
}

type countingStore struct{ calls *int }

func (s *countingStore) InsertActivityLogs(context.Context, []model.ActivityLog) error {
	*s.calls++
	return nil
}

func (s *countingStore) ListActivityLogs(context.Context, int) ([]model.ActivityLog, error) {
	return nil, nil
}
