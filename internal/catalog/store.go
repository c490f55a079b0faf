package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Snapshot is the catalog as seen by a consumer.
type Snapshot struct {
	Products []domain.Product `json:"products"`
	Loading  bool             `json:"loading"`
}

// RetryInterval is how long a fallback snapshot is served before the next
// Products call tries the backend again.
const RetryInterval = 30 * time.Second

// Store holds the current product snapshot. A nil client means mock mode:
// the bundled catalog is the only source.
type Store struct {
	client commerce.Client
	static []domain.Product
	now    func() time.Time

	mu        sync.RWMutex
	products  []domain.Product
	loading   bool
	fallback  bool // remote mode serving the bundled catalog
	fetchedAt time.Time

	sfg singleflight.Group // one fetch in flight at a time
}

func NewStore(client commerce.Client, static []domain.Product) *Store {
	return &Store{
		client: client,
		static: static,
		now:    time.Now,
	}
}

// Fetch replaces the snapshot. Remote failures are logged and answered with
// the bundled catalog so the storefront never shows an empty shelf.
func (s *Store) Fetch(ctx context.Context) []domain.Product {
	v, _, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		s.setLoading(true)
		defer s.setLoading(false)

		products, fallback := s.load(ctx)

		s.mu.Lock()
		s.products = products
		s.fallback = fallback
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return products, nil
	})
	return v.([]domain.Product)
}

// load reports fallback when a configured backend could not supply the
// catalog.
func (s *Store) load(ctx context.Context) ([]domain.Product, bool) {
	if s.client == nil {
		return cloneProducts(s.static), false
	}

	remote, err := s.client.Products(ctx)
	if err != nil {
		log.Printf("catalog fetch error: %v \n", err)
		return cloneProducts(s.static), true
	}
	if len(remote) == 0 {
		log.Printf("catalog fetch returned no products, using bundled catalog")
		return cloneProducts(s.static), true
	}

	products := make([]domain.Product, 0, len(remote))
	for _, rp := range remote {
		products = append(products, MapRemoteProduct(rp))
	}
	return products, false
}

// Products returns the current products, fetching once if nothing has been
// loaded yet and no fetch is running. A fallback snapshot older than
// RetryInterval is refetched.
func (s *Store) Products(ctx context.Context) []domain.Product {
	s.mu.RLock()
	products, loading := s.products, s.loading
	stale := s.fallback && s.now().Sub(s.fetchedAt) >= RetryInterval
	s.mu.RUnlock()

	if len(products) > 0 && !loading && !stale {
		return products
	}
	// nothing loaded, a fetch is running, or the backend is due a retry
	return s.Fetch(ctx)
}

// Product looks up a product by id in the current snapshot.
func (s *Store) Product(ctx context.Context, id string) (domain.Product, bool) {
	for _, p := range s.Products(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Products: s.products,
		Loading:  s.loading,
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}
