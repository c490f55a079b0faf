package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// PruneInterval is how often Run drops closed windows.
const PruneInterval = time.Minute

// Decision is the outcome of one hit against a fixed window.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(count int64, limit int, ttl time.Duration) Decision {
	if count > int64(limit) {
		return Decision{Allowed: false, RetryAfter: ttl}
	}
	return Decision{Allowed: true, Remaining: limit - int(count)}
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window limiter.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
	}
	w.count++
	return decide(w.count, m.limit, w.resetAt.Sub(now)), nil
}

// Prune drops windows that have already closed.
func (m *MemoryLimiter) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	pruned := 0
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
			pruned++
		}
	}
	return pruned
}

// Run prunes closed windows until ctx is done.
func (m *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Prune(); n > 0 {
				log.Printf("pruned %d rate limit windows", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
