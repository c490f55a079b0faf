package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

var errNetwork = errors.New("dial tcp 10.0.0.1:443: i/o timeout")

// fakeCommerce is an in-memory checkout backend.
type fakeCommerce struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession
	variants map[string]domain.CheckoutLine // variant id -> line template
	nextID   int

	createErrs []error // consumed one per CreateCheckout call
	fetchErr   error
	mutateErr  error

	// when release is set, AddLines signals entered and blocks until release
	// is closed
	entered chan struct{}
	release chan struct{}

	creates    int
	fetches    []string
	addCalls   []commerce.LineInput
	removeIDs  []string
	updateArgs []commerce.LineUpdate
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		sessions: make(map[string]*domain.CheckoutSession),
		variants: map[string]domain.CheckoutLine{
			"var-kit-1": {ProductID: "injection-day-kit", Title: "Injection Day Kit", VariantTitle: "Single", UnitPrice: decimal.RequireFromString("49.00")},
			"var-kit-3": {ProductID: "injection-day-kit", Title: "Injection Day Kit", VariantTitle: "3 Pack", UnitPrice: decimal.RequireFromString("129.00")},
			"var-hyd":   {ProductID: "hydration-sticks", Title: "Hydration Sticks", VariantTitle: "Default Title", UnitPrice: decimal.RequireFromString("39.00")},
		},
	}
}

func (f *fakeCommerce) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func copySession(s *domain.CheckoutSession) *domain.CheckoutSession {
	out := *s
	out.Lines = append([]domain.CheckoutLine(nil), s.Lines...)
	return &out
}

// seed stores a session directly, bypassing error injection.
func (f *fakeCommerce) seed(session *domain.CheckoutSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = copySession(session)
}

func (f *fakeCommerce) complete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id].Completed = true
}

func (f *fakeCommerce) Products(context.Context) ([]domain.RemoteProduct, error) {
	return nil, nil
}

func (f *fakeCommerce) CreateCheckout(context.Context) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	id := f.id("checkout")
	s := &domain.CheckoutSession{ID: id, WebURL: "https://shop.example/checkouts/" + id}
	f.sessions[id] = s
	return copySession(s), nil
}

func (f *fakeCommerce) FetchCheckout(_ context.Context, checkoutID string) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, checkoutID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	s, ok := f.sessions[checkoutID]
	if !ok {
		return nil, commerce.ErrCheckoutNotFound
	}
	return copySession(s), nil
}

func (f *fakeCommerce) session(checkoutID string) (*domain.CheckoutSession, error) {
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	s, ok := f.sessions[checkoutID]
	if !ok {
		return nil, commerce.ErrCheckoutNotFound
	}
	return s, nil
}

func (f *fakeCommerce) AddLines(_ context.Context, checkoutID string, lines []commerce.LineInput) (*domain.CheckoutSession, error) {
	if f.release != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, lines...)
	s, err := f.session(checkoutID)
	if err != nil {
		return nil, err
	}
	for _, in := range lines {
		tmpl, ok := f.variants[in.VariantID]
		if !ok {
			return nil, fmt.Errorf("%w: variant %s does not exist", commerce.ErrUserError, in.VariantID)
		}
		merged := false
		for i := range s.Lines {
			if s.Lines[i].VariantID == in.VariantID {
				s.Lines[i].Quantity += in.Quantity
				merged = true
			}
		}
		if !merged {
			line := tmpl
			line.ID = f.id("line")
			line.VariantID = in.VariantID
			line.Quantity = in.Quantity
			s.Lines = append(s.Lines, line)
		}
	}
	return copySession(s), nil
}

func (f *fakeCommerce) RemoveLines(_ context.Context, checkoutID string, lineIDs []string) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeIDs = append(f.removeIDs, lineIDs...)
	s, err := f.session(checkoutID)
	if err != nil {
		return nil, err
	}
	kept := s.Lines[:0]
	for _, l := range s.Lines {
		remove := false
		for _, id := range lineIDs {
			if l.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, l)
		}
	}
	s.Lines = kept
	return copySession(s), nil
}

func (f *fakeCommerce) UpdateLines(_ context.Context, checkoutID string, lines []commerce.LineUpdate) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateArgs = append(f.updateArgs, lines...)
	s, err := f.session(checkoutID)
	if err != nil {
		return nil, err
	}
	for _, u := range lines {
		for i := range s.Lines {
			if s.Lines[i].ID == u.LineID {
				s.Lines[i].Quantity = u.Quantity
			}
		}
	}
	return copySession(s), nil
}

type trackedEvent struct {
	visitorID string
	name      string
	params    tracking.Params
	// items is the cart size seen by the tracker when the event fired
	items int
}

type recordingTracker struct {
	mu     sync.Mutex
	store  *Store
	events []trackedEvent
}

func (r *recordingTracker) Track(_ context.Context, visitorID, name string, params tracking.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := 0
	if r.store != nil {
		items = len(r.store.Snapshot().Items)
	}
	r.events = append(r.events, trackedEvent{visitorID, name, params, items})
}

type staticLookup map[string]domain.Product

func (s staticLookup) Product(_ context.Context, id string) (domain.Product, bool) {
	p, ok := s[id]
	return p, ok
}
