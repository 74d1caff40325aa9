package http

import (
	"sync"
	"sync/atomic"
	"time"

	"goszakup/internal/cache"
)

const (
	// clientTriggersPerMinute bounds report triggers from one client.
	clientTriggersPerMinute = 10
	// scopeTriggerInterval is the minimum gap between two triggers of the
	// same report scope.
	scopeTriggerInterval = time.Minute
	limiterEntries       = 4096
)

// triggerLimiter throttles POST /api/reports twice: a fixed one-minute
// window per client IP, and a minimum spacing per report scope key so a
// report already being built is not queued again.
// Entries live in size-bounded LRUs and expire on their own.
type triggerLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	clients *cache.LRU[*triggerWindow]
	scopes  *cache.LRU[time.Time]
}

type triggerWindow struct {
	start time.Time
	count int
}

func newTriggerLimiter() *triggerLimiter {
	return &triggerLimiter{
		now:     time.Now,
		clients: cache.NewLRU[*triggerWindow](limiterEntries, 2*time.Minute),
		scopes:  cache.NewLRU[time.Time](limiterEntries, scopeTriggerInterval),
	}
}

// allowClient counts one trigger for clientIP.
func (l *triggerLimiter) allowClient(clientIP string, metrics *securityMetrics) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients.Get(clientIP)
	if !ok || now.Sub(w.start) >= time.Minute {
		l.clients.Set(clientIP, &triggerWindow{start: now, count: 1})
		return true
	}
	w.count++
	if w.count > clientTriggersPerMinute {
		l.hit(metrics)
		return false
	}
	return true
}

// allowScope admits a trigger for the report key, or reports how long the
// caller has to wait.
func (l *triggerLimiter) allowScope(key string, metrics *securityMetrics) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.scopes.Get(key); ok {
		if wait := scopeTriggerInterval - now.Sub(last); wait > 0 {
			l.hit(metrics)
			return wait, false
		}
	}
	l.scopes.Set(key, now)
	return 0, true
}

// releaseScope forgets a trigger that never started a report.
func (l *triggerLimiter) releaseScope(key string) {
	l.scopes.Delete(key)
}

func (l *triggerLimiter) hit(metrics *securityMetrics) {
	if metrics != nil {
		atomic.AddInt64(&metrics.rateLimitHits, 1)
	}
}
