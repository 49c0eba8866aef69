package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stemsi/examprep-backend/internal/config"
)

// ErrScopeBusy is returned when another import or distribution holds the scope.
var ErrScopeBusy = errors.New("scope is busy")

// ScopeLocker serializes writers of a bank scope. Acquire never blocks: a
// held scope fails with ErrScopeBusy. The returned release is safe to call once.
type ScopeLocker interface {
	Acquire(ctx context.Context, scope string) (release func(), err error)
}

// acquireAll locks every scope in sorted order and releases what it already
// holds when one of them is busy.
func acquireAll(ctx context.Context, l ScopeLocker, scopes []string) (func(), error) {
	sorted := slices.Clone(scopes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, scope := range sorted {
		release, err := l.Acquire(ctx, scope)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

// releaseScript deletes the lock only while it still carries our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisScopeLocker holds scope locks in Redis so every API instance sees them.
type RedisScopeLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisScopeLocker creates a RedisScopeLocker. Locks expire after ttl even
// if the holder dies.
func NewRedisScopeLocker(rdb *redis.Client, ttl time.Duration) *RedisScopeLocker {
	return &RedisScopeLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisScopeLocker) Acquire(ctx context.Context, scope string) (func(), error) {
	key := config.CacheKey.ScopeLockKey(scope)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire scope lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScopeBusy, scope)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled here.
			releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
		})
	}, nil
}

// LocalScopeLocker is the single-process locker used with the memory store.
type LocalScopeLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalScopeLocker() *LocalScopeLocker {
	return &LocalScopeLocker{held: make(map[string]struct{})}
}

func (l *LocalScopeLocker) Acquire(_ context.Context, scope string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[scope]; busy {
		return nil, fmt.Errorf("%w: %s", ErrScopeBusy, scope)
	}
	l.held[scope] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, scope)
			l.mu.Unlock()
		})
	}, nil
}
