package tracking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
)

const (
	EventViewContent      = "ViewContent"
	EventAddToCart        = "AddToCart"
	EventInitiateCheckout = "InitiateCheckout"
	EventLead             = "Lead"
	EventSubscribe        = "CompleteRegistration"
	EventQuizComplete     = "QuizComplete"
)

const defaultCurrency = "USD"

type Params struct {
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
	ContentIDs  []string        `json:"content_ids,omitempty"`
	ContentName string          `json:"content_name,omitempty"`
	Quantity    int             `json:"num_items,omitempty"`
}

// UserData holds hashed personal identifiers only.
type UserData struct {
	HashedEmail string `json:"em,omitempty"`
}

type Event struct {
	ID        string    `json:"event_id"`
	Name      string    `json:"event_name"`
	VisitorID string    `json:"external_id"`
	Time      time.Time `json:"event_time"`
	Params    Params    `json:"custom_data"`
	User      *UserData `json:"user_data,omitempty"`
}

// Sink delivers events to an analytics backend.
type Sink interface {
	Send(ctx context.Context, event Event) error
}

// HashIdentifier normalizes a personal identifier (trim, lowercase) and
// returns its hex SHA-256.
func HashIdentifier(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Gateway emits analytics events without ever failing or blocking its
// callers.
type Gateway struct {
	sink    Sink
	store   storage.Store
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewGateway(sink Sink, store storage.Store, timeout time.Duration) *Gateway {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		sink:    sink,
		store:   store,
		timeout: timeout,
	}
}

// Track builds an event for visitorID and hands it to the sink in the
// background. The caller's context only contributes values, never its
// cancellation.
func (g *Gateway) Track(ctx context.Context, visitorID, name string, params Params) {
	if params.Currency == "" {
		params.Currency = defaultCurrency
	}
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		VisitorID: visitorID,
		Time:      time.Now().UTC(),
		Params:    params,
	}

	g.FireAndForget(context.WithoutCancel(ctx), "track "+name, func(ctx context.Context) error {
		if hashed := g.cachedEmail(ctx, visitorID); hashed != "" {
			event.User = &UserData{HashedEmail: hashed}
		}
		return g.sink.Send(ctx, event)
	})
}

// Identify caches the visitor's hashed email so later events carry it.
func (g *Gateway) Identify(ctx context.Context, visitorID, email string) (string, error) {
	hashed := HashIdentifier(email)
	if hashed == "" {
		return "", errors.New("email is empty")
	}
	if err := g.store.Set(ctx, visitorID, storage.KeyHashedEmail, []byte(hashed)); err != nil {
		return "", fmt.Errorf("cache hashed email failed: %w", err)
	}
	return hashed, nil
}

func (g *Gateway) cachedEmail(ctx context.Context, visitorID string) string {
	if g.store == nil {
		return ""
	}
	value, err := g.store.Get(ctx, visitorID, storage.KeyHashedEmail)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("hashed email lookup error: %v \n", err)
		}
		return ""
	}
	return string(value)
}

// FireAndForget runs fn in its own goroutine with a bounded timeout. The
// result is discarded: errors and panics are logged and go no further.
func (g *Gateway) FireAndForget(ctx context.Context, what string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("%s panic: %v \n", what, r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("%s error: %v \n", what, err)
		}
	}()
}

// Wait blocks until every detached call has returned.
func (g *Gateway) Wait() {
	g.wg.Wait()
}
