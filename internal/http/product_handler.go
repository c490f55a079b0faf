package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	Products(ctx context.Context) []domain.Product
	Product(ctx context.Context, id string) (domain.Product, bool)
}

// Tracker emits analytics events and caches visitor identity.
type Tracker interface {
	Track(ctx context.Context, visitorID, name string, params tracking.Params)
	Identify(ctx context.Context, visitorID, email string) (string, error)
}

type ProductHandler struct {
	catalog Catalog
	tracker Tracker
	timeout time.Duration
}

func NewProductHandler(catalog Catalog, tracker Tracker, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		tracker: tracker,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: h.catalog.Products(ctx)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, ok := h.catalog.Product(ctx, chi.URLParam(r, "product_id"))
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	h.tracker.Track(r.Context(), getVisitorID(r.Context()), tracking.EventViewContent, tracking.Params{
		Value:       product.Price,
		ContentIDs:  []string{product.ID},
		ContentName: product.Name,
	})
	respondJSON(w, http.StatusOK, product)
}
