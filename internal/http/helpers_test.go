package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/cart"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/catalog"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/contact"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/countdown"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/ratelimit"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
	"github.com/stretchr/testify/require"
)

const testCookie = "sd_visitor"

type recordingSink struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (s *recordingSink) Send(_ context.Context, event tracking.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) named(name string) []tracking.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []tracking.Event
	for _, e := range s.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

var errBackendDown = errors.New("backend unavailable")

// downCommerce fails every call.
type downCommerce struct{}

func (downCommerce) Products(context.Context) ([]domain.RemoteProduct, error) {
	return nil, errBackendDown
}

func (downCommerce) CreateCheckout(context.Context) (*domain.CheckoutSession, error) {
	return nil, errBackendDown
}

func (downCommerce) FetchCheckout(context.Context, string) (*domain.CheckoutSession, error) {
	return nil, errBackendDown
}

func (downCommerce) AddLines(context.Context, string, []commerce.LineInput) (*domain.CheckoutSession, error) {
	return nil, errBackendDown
}

func (downCommerce) RemoveLines(context.Context, string, []string) (*domain.CheckoutSession, error) {
	return nil, errBackendDown
}

func (downCommerce) UpdateLines(context.Context, string, []commerce.LineUpdate) (*domain.CheckoutSession, error) {
	return nil, errBackendDown
}

type testEnv struct {
	handler http.Handler
	sink    *recordingSink
	gateway *tracking.Gateway
	storage storage.Store
}

// newTestEnv wires the router against in-memory collaborators. A nil client
// runs the carts and the catalog in mock mode.
func newTestEnv(t *testing.T, client commerce.Client) *testEnv {
	t.Helper()

	static, err := catalog.StaticProducts()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	sink := &recordingSink{}
	gateway := tracking.NewGateway(sink, store, time.Second)
	products := catalog.NewStore(client, static)
	carts := cart.NewRegistry(cart.Deps{
		Client:  client,
		Storage: store,
		Tracker: gateway,
		Catalog: products,
	})
	contacts := contact.NewService(contact.NewMemoryRepository(), ratelimit.NewMemoryLimiter(5, time.Hour), gateway)
	timer := countdown.NewTimer(store, 1, 24*time.Hour)

	router := NewRouter(RouterConfig{
		VisitorCookie:      testCookie,
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}, Handlers{
		Products: NewProductHandler(products, gateway, 5*time.Second),
		Cart:     NewCartHandler(carts, products, gateway, decimal.NewFromInt(99), 5*time.Second),
		Quiz:     NewQuizHandler(products, gateway),
		Visitor:  NewVisitorHandler(gateway, timer, 5*time.Second),
		Contact:  NewContactHandler(contacts, 5*time.Second),
	})

	return &testEnv{handler: router, sink: sink, gateway: gateway, storage: store}
}

// do sends a request as visitor (empty for a first-time visitor).
func (e *testEnv) do(t *testing.T, method, path, visitor string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	if visitor != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: visitor})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func visitorCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	return nil
}
