package cart

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// IdleTTL is how long an untouched store stays in memory. Its durable
	// state (checkout id, mock lines) survives eviction.
	IdleTTL = 30 * time.Minute

	// SweepInterval is how often idle stores are evicted.
	SweepInterval = time.Minute
)

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out exactly one Store per visitor.
type Registry struct {
	deps Deps
	now  func() time.Time

	mu     sync.Mutex
	stores map[string]*registryEntry
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:   deps,
		now:    time.Now,
		stores: make(map[string]*registryEntry),
	}
}

// Get returns the visitor's store, creating it on first use.
func (r *Registry) Get(visitorID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.stores[visitorID]
	if !ok {
		entry = &registryEntry{store: NewStore(visitorID, r.deps)}
		r.stores[visitorID] = entry
	}
	entry.lastSeen = r.now()
	return entry.store
}

// Len reports how many carts are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Run evicts idle stores until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.evictIdle(IdleTTL); n > 0 {
				log.Printf("evicted %d idle carts, %d active", n, r.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) evictIdle(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	evicted := 0
	for id, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			evicted++
		}
	}
	return evicted
}
