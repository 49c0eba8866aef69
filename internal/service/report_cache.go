package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/model"
)

// ErrNoReport is returned when a scope has never been distributed.
var ErrNoReport = errors.New("no distribution report for scope")

const reportTTL = 30 * 24 * time.Hour

// ReportCache keeps the last distribution report of each scope.
type ReportCache interface {
	Save(ctx context.Context, scope string, report *model.DistributionReport) error
	Load(ctx context.Context, scope string) (*model.DistributionReport, error)
}

// RedisReportCache stores reports as JSON under config.CacheKey.DistributionReportKey.
type RedisReportCache struct {
	rdb *redis.Client
}

func NewRedisReportCache(rdb *redis.Client) *RedisReportCache {
	return &RedisReportCache{rdb: rdb}
}

func (c *RedisReportCache) Save(ctx context.Context, scope string, report *model.DistributionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.DistributionReportKey(scope), data, reportTTL).Err()
}

func (c *RedisReportCache) Load(ctx context.Context, scope string) (*model.DistributionReport, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.DistributionReportKey(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, err
	}

	var report model.DistributionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// MemoryReportCache is the in-process ReportCache.
type MemoryReportCache struct {
	mu      sync.RWMutex
	reports map[string]model.DistributionReport
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{reports: make(map[string]model.DistributionReport)}
}

func (c *MemoryReportCache) Save(_ context.Context, scope string, report *model.DistributionReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[scope] = *report
	return nil
}

func (c *MemoryReportCache) Load(_ context.Context, scope string) (*model.DistributionReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.reports[scope]
	if !ok {
		return nil, ErrNoReport
	}
	return &r, nil
}
