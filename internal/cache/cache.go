// Package cache keeps recently read report runs in memory so the API does
// not hit the database for runs it has already served.
package cache

import (
	"context"
	"time"

	"goszakup/internal/log"
	"goszakup/internal/storage"
)

// RunSource is the storage side of the cache.
type RunSource interface {
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (*storage.Run, error)
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Runs serves GetRun from an LRU. Stored runs never change, so entries only
// leave through eviction or expiry. ListRuns always goes to the source since
// new runs keep arriving.
type Runs struct {
	source RunSource
	lru    *LRU[storage.Run]
}

func NewRuns(source RunSource, maxSize int, ttl time.Duration) *Runs {
	return &Runs{source: source, lru: NewLRU[storage.Run](maxSize, ttl)}
}

func (r *Runs) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	return r.source.ListRuns(ctx, limit)
}

func (r *Runs) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	if run, ok := r.lru.Get(id); ok {
		return &run, nil
	}
	run, err := r.source.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lru.Set(id, *run)
	return run, nil
}

// CleanExpired lets a Manager sweep the run cache.
func (r *Runs) CleanExpired() int { return r.lru.CleanExpired() }

// Manager sweeps registered caches on an interval until its context ends.
type Manager struct {
	caches []Cleaner
	logger *log.Logger
}

func NewManager(logger *log.Logger, caches ...Cleaner) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{caches: caches, logger: logger}
}

// Run blocks, sweeping every interval, and returns when ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		}
	}
}

// Sweep cleans every registered cache once.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}
