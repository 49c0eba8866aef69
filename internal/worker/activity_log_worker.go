package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// uniqueViolation is the PostgreSQL code for a duplicate key.
const uniqueViolation = "23505"

// ActivityLogWorker drains the activity log queue into the store in batches.
type ActivityLogWorker struct {
	store repository.ActivityLogStore
	rdb   *redis.Client
	log   zerolog.Logger

	requeue func(ctx context.Context, items []model.ActivityLog)
}

func NewActivityLogWorker(store repository.ActivityLogStore, rdb *redis.Client, log zerolog.Logger) *ActivityLogWorker {
	w := &ActivityLogWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "activity_log_worker").Logger(),
	}
	w.requeue = w.requeueRedis
	return w
}

func (w *ActivityLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ActivityLogWorker started")

	buffer := make([]model.ActivityLog, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistActivityLogQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var entry model.ActivityLog
		if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
			// Malformed entries cannot be retried.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed activity log")
			continue
		}
		buffer = append(buffer, entry)
	}
}

// flushSafe tries one bulk insert, then falls back to row-by-row inserts and
// requeues the rows that still fail.
func (w *ActivityLogWorker) flushSafe(ctx context.Context, batch []model.ActivityLog) {
	if len(batch) == 0 {
		return
	}
	err := w.store.InsertActivityLogs(ctx, batch)
	if err == nil {
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

	var failed []model.ActivityLog
	for _, entry := range batch {
		err := w.store.InsertActivityLogs(ctx, []model.ActivityLog{entry})
		if err == nil {
			continue
		}
		// A duplicate means an earlier requeued copy already landed.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			continue
		}
		w.log.Error().Err(err).Str("id", entry.ID.String()).Msg("Insert failed, requeueing")
		failed = append(failed, entry)
	}

	if len(failed) > 0 {
		w.requeue(ctx, failed)
	}
}

func (w *ActivityLogWorker) requeueRedis(ctx context.Context, items []model.ActivityLog) {
	pipe := w.rdb.Pipeline()
	for _, entry := range items {
		data, _ := json.Marshal(entry)
		pipe.RPush(ctx, config.WorkerKey.PersistActivityLogQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue activity logs. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed activity logs")
	// Back off so a database outage does not spin the queue.
	time.Sleep(2 * time.Second)
}

func (w *ActivityLogWorker) shutdown(buffer []model.ActivityLog) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w.flushSafe(shutdownCtx, buffer)
}
