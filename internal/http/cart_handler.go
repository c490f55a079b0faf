package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/cart"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

const maxQuantity = 99

// Carts hands out the cart store of a visitor.
type Carts interface {
	Get(visitorID string) *cart.Store
}

type CartHandler struct {
	carts     Carts
	catalog   Catalog
	tracker   Tracker
	threshold decimal.Decimal
	timeout   time.Duration
}

func NewCartHandler(carts Carts, catalog Catalog, tracker Tracker, freeShippingThreshold decimal.Decimal, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:     carts,
		catalog:   catalog,
		tracker:   tracker,
		threshold: freeShippingThreshold,
		timeout:   timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// TierID selects a pricing tier. VariantLabel defaults to the tier label
	// and must otherwise contain it.
	TierID       string `json:"tier_id,omitempty"`
	VariantLabel string `json:"variant_label"`
}

type UpdateQuantityRequestDTO struct {
	Delta        int    `json:"delta"`
	VariantLabel string `json:"variant_label"`
}

type CartResponse struct {
	Items                 []domain.LineItem `json:"items"`
	CheckoutURL           string            `json:"checkout_url,omitempty"`
	IsOpen                bool              `json:"is_open"`
	IsUpdating            bool              `json:"is_updating"`
	ItemCount             int               `json:"item_count"`
	Subtotal              decimal.Decimal   `json:"subtotal"`
	FreeShippingThreshold decimal.Decimal   `json:"free_shipping_threshold"`
	FreeShippingProgress  float64           `json:"free_shipping_progress"`
	MockMode              bool              `json:"mock_mode"`
	// SyncError is set when the backend rejected the last operation. The
	// cart is then the last synced state.
	SyncError string `json:"sync_error,omitempty"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store := h.carts.Get(getVisitorID(r.Context()))
	err := store.Init(ctx)
	h.respondCart(w, r, store, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, ok := h.catalog.Product(ctx, req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	label := req.VariantLabel
	if req.TierID != "" {
		tier, ok := product.TierByID(req.TierID)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_tier_id", "tier not offered for this product")
			return
		}
		if label == "" {
			label = tier.Label
		} else if !strings.Contains(label, tier.Label) {
			respondError(w, http.StatusBadRequest, "invalid_variant_label", "variant_label does not match tier")
			return
		}
	}

	store := h.carts.Get(getVisitorID(r.Context()))
	err := store.AddItem(ctx, product, req.Quantity, label)
	h.respondCart(w, r, store, err)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must not be zero")
		return
	}

	store := h.carts.Get(getVisitorID(r.Context()))
	err := store.UpdateQuantity(ctx, chi.URLParam(r, "line_id"), req.Delta, req.VariantLabel)
	h.respondCart(w, r, store, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store := h.carts.Get(getVisitorID(r.Context()))
	err := store.RemoveItem(ctx, chi.URLParam(r, "line_id"), r.URL.Query().Get("variant_label"))
	h.respondCart(w, r, store, err)
}

func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(getVisitorID(r.Context()))
	store.SetOpen(true)
	h.respondCart(w, r, store, nil)
}

func (h *CartHandler) Close(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(getVisitorID(r.Context()))
	store.SetOpen(false)
	h.respondCart(w, r, store, nil)
}

// Checkout hands out the hosted checkout URL.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorID(r.Context())
	store := h.carts.Get(visitorID)
	if err := store.Init(ctx); err != nil {
		handleCartError(w, r, err)
		return
	}
	snapshot := store.Snapshot()
	if len(snapshot.Items) == 0 {
		respondError(w, http.StatusConflict, "cart_empty", "your cart is empty")
		return
	}
	if snapshot.CheckoutURL == "" {
		respondError(w, http.StatusConflict, "checkout_unavailable", "checkout is not available right now")
		return
	}

	ids := make([]string, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		ids = append(ids, item.ID)
	}
	h.tracker.Track(r.Context(), visitorID, tracking.EventInitiateCheckout, tracking.Params{
		Value:      snapshot.Subtotal(),
		ContentIDs: ids,
		Quantity:   snapshot.ItemCount(),
	})
	respondJSON(w, http.StatusOK, CheckoutResponse{CheckoutURL: snapshot.CheckoutURL})
}

// respondCart writes the cart. Sync failures still return the last synced
// cart; the storefront keeps rendering it.
func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, store *cart.Store, err error) {
	resp := h.cartResponse(store)
	if err != nil {
		if !errors.Is(err, cart.ErrSyncFailed) {
			handleCartError(w, r, err)
			return
		}
		log.Printf("[%s] cart sync error: %v \n", getRequestID(r.Context()), err)
		resp.SyncError = "we couldn't update your cart, please try again"
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) cartResponse(store *cart.Store) CartResponse {
	snapshot := store.Snapshot()
	items := snapshot.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartResponse{
		Items:                 items,
		CheckoutURL:           snapshot.CheckoutURL,
		IsOpen:                snapshot.IsOpen,
		IsUpdating:            snapshot.IsUpdating,
		ItemCount:             snapshot.ItemCount(),
		Subtotal:              snapshot.Subtotal(),
		FreeShippingThreshold: h.threshold,
		FreeShippingProgress:  snapshot.FreeShippingProgress(h.threshold),
		MockMode:              store.MockMode(),
	}
}

func handleCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "cart item not found")
	case errors.Is(err, cart.ErrSyncFailed):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "checkout is not available right now")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "the request took too long")
	default:
		log.Printf("[%s] cart error: %v \n", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
