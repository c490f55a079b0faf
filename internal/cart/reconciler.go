package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
)

// createAttempts bounds how often one reconcile may call CreateCheckout.
const createAttempts = 2

// Reconciler resolves the visitor's checkout session: it reuses the persisted
// one while the backend still considers it open and replaces it otherwise.
type Reconciler struct {
	client  commerce.Client
	storage storage.Store
}

func NewReconciler(client commerce.Client, store storage.Store) *Reconciler {
	return &Reconciler{
		client:  client,
		storage: store,
	}
}

// Reconcile returns an open checkout session for visitorID. observe is told
// about every state the reconciliation passes through and may be nil.
func (r *Reconciler) Reconcile(ctx context.Context, visitorID string, observe func(State)) (*domain.CheckoutSession, error) {
	if observe == nil {
		observe = func(State) {}
	}

	checkoutID, err := r.storage.Get(ctx, visitorID, storage.KeyCheckoutID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("read checkout id error: %v \n", err)
	}

	if len(checkoutID) > 0 {
		observe(StateFetching)
		session, errFetch := r.client.FetchCheckout(ctx, string(checkoutID))
		switch {
		case errFetch == nil && !session.Completed:
			return session, nil
		case errFetch == nil:
			log.Printf("checkout %s is completed, starting a new one", checkoutID)
		case errors.Is(errFetch, commerce.ErrCheckoutNotFound):
			log.Printf("checkout %s is no longer valid, starting a new one", checkoutID)
		default:
			log.Printf("fetch checkout error: %v \n", errFetch)
		}
	}

	return r.create(ctx, visitorID, observe)
}

func (r *Reconciler) create(ctx context.Context, visitorID string, observe func(State)) (*domain.CheckoutSession, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		observe(StateCreating)
		session, err := r.client.CreateCheckout(ctx)
		if err != nil {
			log.Printf("create checkout error: %v \n", err)
			lastErr = err
			continue
		}

		if errSet := r.storage.Set(ctx, visitorID, storage.KeyCheckoutID, []byte(session.ID)); errSet != nil {
			log.Printf("persist checkout id error: %v \n", errSet)
		}
		return session, nil
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, fmt.Errorf("create checkout failed: %w", lastErr)
}
