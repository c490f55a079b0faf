package countdown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
)

// Record is the persisted promotional deadline for one visitor.
type Record struct {
	Version      int   `json:"version"`
	EndTimestamp int64 `json:"end_timestamp"` // unix milliseconds
}

func (r Record) End() time.Time {
	return time.UnixMilli(r.EndTimestamp).UTC()
}

// Status is what the storefront renders.
type Status struct {
	Version          int       `json:"version"`
	EndsAt           time.Time `json:"ends_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// Timer hands out per-visitor countdowns. Bumping version discards every
// stored record on the next load.
type Timer struct {
	store    storage.Store
	version  int
	duration time.Duration
	now      func() time.Time
}

func NewTimer(store storage.Store, version int, duration time.Duration) *Timer {
	return &Timer{
		store:    store,
		version:  version,
		duration: duration,
		now:      time.Now,
	}
}

// Load returns the visitor's running countdown, starting a new one when the
// stored record is missing, unreadable, from another version or expired.
func (t *Timer) Load(ctx context.Context, visitorID string) (Status, error) {
	now := t.now()
	key := storage.CountdownKey(t.version)

	record, ok := t.read(ctx, visitorID, key)
	if !ok || record.Version != t.version || !record.End().After(now) {
		record = Record{
			Version:      t.version,
			EndTimestamp: now.Add(t.duration).UnixMilli(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return Status{}, fmt.Errorf("marshal countdown failed: %w", err)
		}
		if err := t.store.Set(ctx, visitorID, key, data); err != nil {
			return Status{}, fmt.Errorf("persist countdown failed: %w", err)
		}
	}

	remaining := record.End().Sub(now)
	return Status{
		Version:          record.Version,
		EndsAt:           record.End(),
		RemainingSeconds: int64(remaining / time.Second),
	}, nil
}

func (t *Timer) read(ctx context.Context, visitorID, key string) (Record, bool) {
	data, err := t.store.Get(ctx, visitorID, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("read countdown error: %v \n", err)
		}
		return Record{}, false
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("unmarshal countdown error: %v \n", err)
		return Record{}, false
	}
	return record, true
}
