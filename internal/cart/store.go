package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

// Tracker receives analytics events. Implementations must not block.
type Tracker interface {
	Track(ctx context.Context, visitorID, name string, params tracking.Params)
}

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Product(ctx context.Context, id string) (domain.Product, bool)
}

// defaultVariantTitle is what the backend reports for products without options.
const defaultVariantTitle = "Default Title"

// Store is one visitor's cart. With a nil commerce client it runs in mock
// mode and keeps lines in durable storage; otherwise its lines are a
// projection of the visitor's remote checkout session.
type Store struct {
	visitorID  string
	client     commerce.Client
	reconciler *Reconciler
	storage    storage.Store
	tracker    Tracker
	catalog    ProductLookup

	// ops serializes initialization and mutations so two remote updates on
	// the same checkout never race.
	ops sync.Mutex

	mu          sync.RWMutex
	state       State
	items       []domain.LineItem
	checkoutID  string
	checkoutURL string
	isOpen      bool
	isUpdating  bool
}

type Deps struct {
	Client  commerce.Client
	Storage storage.Store
	Tracker Tracker
	Catalog ProductLookup
}

func NewStore(visitorID string, deps Deps) *Store {
	s := &Store{
		visitorID: visitorID,
		client:    deps.Client,
		storage:   deps.Storage,
		tracker:   deps.Tracker,
		catalog:   deps.Catalog,
		state:     StateUninitialized,
	}
	if deps.Client != nil {
		s.reconciler = NewReconciler(deps.Client, deps.Storage)
	}
	return s
}

// MockMode reports whether the store runs without a commerce backend.
func (s *Store) MockMode() bool {
	return s.client == nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the cart for consumers.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return domain.Cart{
		Items:       items,
		CheckoutURL: s.checkoutURL,
		IsOpen:      s.isOpen,
		IsUpdating:  s.isUpdating,
	}
}

func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	s.isOpen = open
	s.mu.Unlock()
}

// Init brings the store to Synced. It is a no-op once synced. A failed
// remote reconciliation leaves the store uninitialized so the next call
// tries again.
func (s *Store) Init(ctx context.Context) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.initLocked(ctx)
}

func (s *Store) initLocked(ctx context.Context) error {
	if s.State() != StateUninitialized {
		return nil
	}

	if s.MockMode() {
		items := s.loadMockItems(ctx)
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
		s.setState(StateSynced)
		return nil
	}

	session, err := s.reconciler.Reconcile(ctx, s.visitorID, s.setState)
	if err != nil {
		s.setState(StateUninitialized)
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	s.applySession(ctx, session)
	s.setState(StateSynced)
	return nil
}

// AddItem adds quantity units of product under variantLabel and opens the
// cart drawer. Lines with the same product id and variant label are merged.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int, variantLabel string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.SetOpen(true)

	s.ops.Lock()
	defer s.ops.Unlock()
	if err := s.initLocked(ctx); err != nil {
		log.Printf("cart init error: %v \n", err)
		return err
	}

	// the chosen tier sets the unit price in both modes
	product = priceForVariant(product, variantLabel)

	if s.MockMode() {
		s.mu.Lock()
		s.items = mergeLine(s.items, product, quantity, variantLabel)
		s.mu.Unlock()
		s.persistMockItems(ctx)
	} else {
		variantID := resolveVariantID(product, variantLabel)
		err := s.remote(ctx, func(checkoutID string) (*domain.CheckoutSession, error) {
			return s.client.AddLines(ctx, checkoutID, []commerce.LineInput{{VariantID: variantID, Quantity: quantity}})
		})
		if err != nil {
			return err
		}
	}

	if s.tracker != nil {
		s.tracker.Track(ctx, s.visitorID, tracking.EventAddToCart, tracking.Params{
			Value:       product.Price,
			ContentIDs:  []string{product.ID},
			ContentName: product.Name,
			Quantity:    quantity,
		})
	}
	return nil
}

// RemoveItem drops a line. In remote mode lineID is the backend line id; in
// mock mode it is the product id and variantLabel completes the key.
func (s *Store) RemoveItem(ctx context.Context, lineID, variantLabel string) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	if err := s.initLocked(ctx); err != nil {
		log.Printf("cart init error: %v \n", err)
		return err
	}
	return s.removeLocked(ctx, lineID, variantLabel)
}

func (s *Store) removeLocked(ctx context.Context, lineID, variantLabel string) error {
	if s.MockMode() {
		s.mu.Lock()
		s.items = filterLine(s.items, lineID, variantLabel)
		s.mu.Unlock()
		s.persistMockItems(ctx)
		return nil
	}

	return s.remote(ctx, func(checkoutID string) (*domain.CheckoutSession, error) {
		return s.client.RemoveLines(ctx, checkoutID, []string{lineID})
	})
}

// UpdateQuantity moves a line's quantity by delta. A result of zero or less
// removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, delta int, variantLabel string) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	if err := s.initLocked(ctx); err != nil {
		log.Printf("cart init error: %v \n", err)
		return err
	}

	current, ok := s.findLine(lineID, variantLabel)
	if !ok {
		return ErrLineNotFound
	}
	newQuantity := max(0, current.Quantity+delta)
	if newQuantity == 0 {
		return s.removeLocked(ctx, lineID, variantLabel)
	}

	if s.MockMode() {
		s.mu.Lock()
		for i := range s.items {
			if s.items[i].LineID == lineID && s.items[i].VariantLabel == variantLabel {
				s.items[i].Quantity = newQuantity
			}
		}
		s.mu.Unlock()
		s.persistMockItems(ctx)
		return nil
	}

	return s.remote(ctx, func(checkoutID string) (*domain.CheckoutSession, error) {
		return s.client.UpdateLines(ctx, checkoutID, []commerce.LineUpdate{{LineID: lineID, Quantity: newQuantity}})
	})
}

// remote runs one checkout mutation and re-projects the cart from the
// returned session. On failure the cart keeps its last synced lines.
func (s *Store) remote(ctx context.Context, call func(checkoutID string) (*domain.CheckoutSession, error)) error {
	s.mu.Lock()
	checkoutID := s.checkoutID
	s.isUpdating = true
	s.mu.Unlock()
	s.setState(StateUpdating)

	defer func() {
		s.mu.Lock()
		s.isUpdating = false
		s.mu.Unlock()
	}()

	session, err := call(checkoutID)
	if err == nil && session.Completed {
		err = commerce.ErrCheckoutNotFound
	}
	if err != nil {
		log.Printf("cart update error: %v \n", err)
		if errors.Is(err, commerce.ErrCheckoutNotFound) {
			// the next operation reconciles and starts a fresh checkout
			s.setState(StateUninitialized)
		} else {
			s.setState(StateSynced)
		}
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	s.applySession(ctx, session)
	s.setState(StateSynced)
	return nil
}

func (s *Store) applySession(ctx context.Context, session *domain.CheckoutSession) {
	items := s.project(ctx, session)
	s.mu.Lock()
	s.checkoutID = session.ID
	s.checkoutURL = session.WebURL
	s.items = items
	s.mu.Unlock()
}

// project maps checkout lines to cart lines. Catalog data fills in display
// fields; the backend stays authoritative for price and quantity.
func (s *Store) project(ctx context.Context, session *domain.CheckoutSession) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(session.Lines))
	for _, line := range session.Lines {
		if line.Quantity < 1 {
			continue
		}
		product := domain.Product{
			ID:      line.ProductID,
			Name:    line.Title,
			Rating:  domain.DefaultRating,
			Reviews: domain.DefaultReviews,
			Image:   line.Image,
		}
		if s.catalog != nil {
			if p, ok := s.catalog.Product(ctx, line.ProductID); ok {
				product = p
			}
		}
		product.Price = line.UnitPrice
		if product.Image == "" {
			product.Image = line.Image
		}

		label := line.VariantTitle
		if label == defaultVariantTitle {
			label = ""
		}
		items = append(items, domain.LineItem{
			Product:      product,
			LineID:       line.ID,
			Quantity:     line.Quantity,
			VariantLabel: label,
		})
	}
	return items
}

func (s *Store) findLine(lineID, variantLabel string) (domain.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.LineID != lineID {
			continue
		}
		// remote line ids are unique on their own
		if !s.MockMode() || item.VariantLabel == variantLabel {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

func (s *Store) setState(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == to {
		return
	}
	if !CanTransitionTo(s.state, to) {
		log.Printf("cart %s: unexpected transition %s -> %s", s.visitorID, s.state, to)
	}
	s.state = to
}

func (s *Store) loadMockItems(ctx context.Context) []domain.LineItem {
	if s.storage == nil {
		return nil
	}
	data, err := s.storage.Get(ctx, s.visitorID, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load cart error: %v \n", err)
		}
		return nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("unmarshal cart error: %v \n", err)
		return nil
	}
	kept := items[:0]
	for _, item := range items {
		if item.Quantity >= 1 {
			kept = append(kept, item)
		}
	}
	return kept
}

func (s *Store) persistMockItems(ctx context.Context) {
	if s.storage == nil {
		return
	}
	s.mu.RLock()
	data, err := json.Marshal(s.items)
	s.mu.RUnlock()
	if err != nil {
		log.Printf("marshal cart error: %v \n", err)
		return
	}
	if err := s.storage.Set(ctx, s.visitorID, storage.KeyCart, data); err != nil {
		log.Printf("persist cart error: %v \n", err)
	}
}

// mergeLine adds quantity to the line keyed by (product id, variant label) or
// appends a new line.
func mergeLine(items []domain.LineItem, product domain.Product, quantity int, variantLabel string) []domain.LineItem {
	key := domain.LineKey{ProductID: product.ID, VariantLabel: variantLabel}
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, domain.LineItem{
		Product:      product,
		LineID:       product.ID,
		Quantity:     quantity,
		VariantLabel: variantLabel,
	})
}

func filterLine(items []domain.LineItem, lineID, variantLabel string) []domain.LineItem {
	kept := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.LineID == lineID && item.VariantLabel == variantLabel {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// matchTier finds the tier whose label appears in variantLabel.
func matchTier(product domain.Product, variantLabel string) (domain.PricingTier, bool) {
	if variantLabel == "" {
		return domain.PricingTier{}, false
	}
	for _, tier := range product.Tiers {
		if tier.Label != "" && strings.Contains(variantLabel, tier.Label) {
			return tier, true
		}
	}
	return domain.PricingTier{}, false
}

// priceForVariant returns product priced at the tier selected by
// variantLabel, or unchanged when no tier matches.
func priceForVariant(product domain.Product, variantLabel string) domain.Product {
	tier, ok := matchTier(product, variantLabel)
	if !ok {
		return product
	}
	product.Price = tier.Price
	product.OriginalPrice = tier.OriginalPrice
	return product
}

// resolveVariantID picks the backend variant for an add. A matching tier's
// explicit VariantID wins over its id. Without a matching tier the product's
// own variant (or id) is used.
func resolveVariantID(product domain.Product, variantLabel string) string {
	if tier, ok := matchTier(product, variantLabel); ok {
		if tier.VariantID != "" {
			return tier.VariantID
		}
		return tier.ID
	}
	if product.VariantID != "" {
		return product.VariantID
	}
	return product.ID
}
