package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is durable per-visitor key/value storage. It plays the part of the
// browser's local storage: every key is scoped to one visitor.
type Store interface {
	Get(ctx context.Context, visitorID, key string) ([]byte, error)
	Set(ctx context.Context, visitorID, key string, value []byte) error
	Delete(ctx context.Context, visitorID, key string) error
}

var ErrNotFound = errors.New("storage key not found")

const (
	KeyCheckoutID  = "checkout_id"
	KeyHashedEmail = "hashed_email"
	KeyCart        = "cart"
)

// CountdownKey is versioned so that bumping the version abandons old records.
func CountdownKey(version int) string {
	return fmt.Sprintf("countdown_v%d", version)
}

func storageKey(visitorID, key string) string {
	return fmt.Sprintf("visitor:%s:%s", visitorID, key)
}
