package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/repository"
)

// ActivityPublisher records admin activity. Publishing is best effort: a
// lost log entry never fails the import or distribution that produced it.
type ActivityPublisher interface {
	Publish(ctx context.Context, entry model.ActivityLog)
}

// newActivity builds a log entry with its details marshalled to JSON.
func newActivity(kind model.ActivityKind, scope, summary string, details any) model.ActivityLog {
	entry := model.ActivityLog{
		ID:        uuid.New(),
		Kind:      kind,
		ScopeKey:  scope,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}
	return entry
}

// QueueActivityPublisher pushes entries onto the Redis queue drained by
// worker.ActivityLogWorker.
type QueueActivityPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewQueueActivityPublisher(rdb *redis.Client, log zerolog.Logger) *QueueActivityPublisher {
	return &QueueActivityPublisher{
		rdb: rdb,
		log: log.With().Str("component", "activity_publisher").Logger(),
	}
}

func (p *QueueActivityPublisher) Publish(ctx context.Context, entry model.ActivityLog) {
	data, err := json.Marshal(entry)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to marshal activity log")
		return
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.PersistActivityLogQueue, data).Err(); err != nil {
		p.log.Warn().Err(err).Str("kind", string(entry.Kind)).Msg("Failed to queue activity log")
	}
}

// StoreActivityPublisher writes entries straight to the store. It is used
// when no Redis queue is available.
type StoreActivityPublisher struct {
	store repository.ActivityLogStore
	log   zerolog.Logger
}

func NewStoreActivityPublisher(store repository.ActivityLogStore, log zerolog.Logger) *StoreActivityPublisher {
	return &StoreActivityPublisher{
		store: store,
		log:   log.With().Str("component", "activity_publisher").Logger(),
	}
}

func (p *StoreActivityPublisher) Publish(ctx context.Context, entry model.ActivityLog) {
	if err := p.store.InsertActivityLogs(ctx, []model.ActivityLog{entry}); err != nil {
		p.log.Warn().Err(err).Str("kind", string(entry.Kind)).Msg("Failed to store activity log")
	}
}

// ActivityService lists the persisted activity trail.
type ActivityService struct {
	store repository.ActivityLogStore
}

func NewActivityService(store repository.ActivityLogStore) *ActivityService {
	return &ActivityService{store: store}
}

// Recent returns up to limit entries, newest first. limit defaults to 50 and is capped at 200.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	logs, err := s.store.ListActivityLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.ActivityLog{}
	}
	return logs, nil
}
