package commerce

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerClient guards a Client with a circuit breaker so a failing backend
// is skipped quickly and callers fall back to their last known-good state.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerClient(next Client, name string) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing checkout or a rejected mutation is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCheckoutNotFound) || errors.Is(err, ErrUserError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &BreakerClient{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func execute[T any](b *BreakerClient, fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (b *BreakerClient) Products(ctx context.Context) ([]domain.RemoteProduct, error) {
	return execute(b, func() ([]domain.RemoteProduct, error) {
		return b.next.Products(ctx)
	})
}

func (b *BreakerClient) CreateCheckout(ctx context.Context) (*domain.CheckoutSession, error) {
	return execute(b, func() (*domain.CheckoutSession, error) {
		return b.next.CreateCheckout(ctx)
	})
}

func (b *BreakerClient) FetchCheckout(ctx context.Context, checkoutID string) (*domain.CheckoutSession, error) {
	return execute(b, func() (*domain.CheckoutSession, error) {
		return b.next.FetchCheckout(ctx, checkoutID)
	})
}

func (b *BreakerClient) AddLines(ctx context.Context, checkoutID string, lines []LineInput) (*domain.CheckoutSession, error) {
	return execute(b, func() (*domain.CheckoutSession, error) {
		return b.next.AddLines(ctx, checkoutID, lines)
	})
}

func (b *BreakerClient) RemoveLines(ctx context.Context, checkoutID string, lineIDs []string) (*domain.CheckoutSession, error) {
	return execute(b, func() (*domain.CheckoutSession, error) {
		return b.next.RemoveLines(ctx, checkoutID, lineIDs)
	})
}

func (b *BreakerClient) UpdateLines(ctx context.Context, checkoutID string, lines []LineUpdate) (*domain.CheckoutSession, error) {
	return execute(b, func() (*domain.CheckoutSession, error) {
		return b.next.UpdateLines(ctx, checkoutID, lines)
	})
}
