package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCart_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", uuid.NewString(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.MockMode)
	assert.True(t, resp.Subtotal.IsZero())
	assert.Equal(t, float64(0), resp.FreeShippingProgress)
	assert.Equal(t, "99", resp.FreeShippingThreshold.String())
}

func TestAddItem_Success(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{
		ProductID: "injection-day-kit", Quantity: 2, VariantLabel: "Single (Subscription)",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CartResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "injection-day-kit", resp.Items[0].ID)
	assert.Equal(t, "Single (Subscription)", resp.Items[0].VariantLabel)
	assert.Equal(t, 2, resp.ItemCount)
	assert.Equal(t, "98", resp.Subtotal.String())
	assert.True(t, resp.IsOpen)
	assert.InDelta(t, 98.0/99.0, resp.FreeShippingProgress, 1e-9)

	env.gateway.Wait()
	events := env.sink.named(tracking.EventAddToCart)
	require.Len(t, events, 1)
	assert.Equal(t, visitor, events[0].VisitorID)
	assert.Equal(t, []string{"injection-day-kit"}, events[0].Params.ContentIDs)
	assert.Equal(t, "USD", events[0].Params.Currency)
}

func TestAddItem_MergesAndUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()
	add := AddItemRequestDTO{ProductID: "hydration-sticks", Quantity: 1, VariantLabel: "Single"}

	env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, add)
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, add)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/hydration-sticks", visitor,
		UpdateQuantityRequestDTO{Delta: 1, VariantLabel: "Single"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, "117", resp.Subtotal.String())

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/hydration-sticks", visitor,
		UpdateQuantityRequestDTO{Delta: -3, VariantLabel: "Single"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = CartResponse{}
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
}

func TestAddItem_TierPricedInMockMode(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{
		ProductID: "digestive-relief", Quantity: 1, VariantLabel: "3 Pack (One-Time)",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CartResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "3 Pack (One-Time)", resp.Items[0].VariantLabel)
	assert.Equal(t, "89", resp.Items[0].Price.String())
	assert.Equal(t, "89", resp.Subtotal.String())

	env.gateway.Wait()
	events := env.sink.named(tracking.EventAddToCart)
	require.Len(t, events, 1)
	assert.Equal(t, "89", events[0].Params.Value.String())
}

func TestAddItem_ByTierID(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{
		ProductID: "hydration-sticks", Quantity: 2, TierID: "hydration-sticks-3",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CartResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "3 Pack", resp.Items[0].VariantLabel)
	assert.Equal(t, "198", resp.Subtotal.String())

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{
		ProductID: "hydration-sticks", Quantity: 1, TierID: "hydration-sticks-9",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{
		ProductID: "hydration-sticks", Quantity: 1, TierID: "hydration-sticks-3", VariantLabel: "Single",
	})
	var errResp ErrorResponse
	decodeBody(t, rec, &errResp)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_variant_label", errResp.Code)
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()
	env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{ProductID: "nausea-navigator", Quantity: 1})
	env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{ProductID: "digestive-relief", Quantity: 1, VariantLabel: "3 Pack"})

	rec := env.do(t, http.MethodDelete, "/api/v1/cart/items/digestive-relief?variant_label=3+Pack", visitor, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "nausea-navigator", resp.Items[0].ID)
}

func TestAddItem_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"invalid json", "{", http.StatusBadRequest, "invalid_request"},
		{"missing product", AddItemRequestDTO{Quantity: 1}, http.StatusBadRequest, "invalid_product_id"},
		{"zero quantity", AddItemRequestDTO{ProductID: "hydration-sticks"}, http.StatusBadRequest, "invalid_quantity"},
		{"too many", AddItemRequestDTO{ProductID: "hydration-sticks", Quantity: 100}, http.StatusBadRequest, "invalid_quantity"},
		{"unknown product", AddItemRequestDTO{ProductID: "nope", Quantity: 1}, http.StatusNotFound, "product_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/ghost", uuid.NewString(), UpdateQuantityRequestDTO{Delta: 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "line_not_found", resp.Code)
}

func TestFreeShippingProgress_Clamped(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", uuid.NewString(),
		AddItemRequestDTO{ProductID: "injection-day-kit", Quantity: 10})

	var resp CartResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "490", resp.Subtotal.String())
	assert.Equal(t, float64(1), resp.FreeShippingProgress)
}

func TestCart_IsolatedPerVisitor(t *testing.T) {
	env := newTestEnv(t, nil)
	alice, bob := uuid.NewString(), uuid.NewString()

	env.do(t, http.MethodPost, "/api/v1/cart/items", alice, AddItemRequestDTO{ProductID: "hydration-sticks", Quantity: 1})

	rec := env.do(t, http.MethodGet, "/api/v1/cart", bob, nil)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
}

func TestOpenClose(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()
	var resp CartResponse

	decodeBody(t, env.do(t, http.MethodPost, "/api/v1/cart/open", visitor, nil), &resp)
	assert.True(t, resp.IsOpen)

	decodeBody(t, env.do(t, http.MethodPost, "/api/v1/cart/close", visitor, nil), &resp)
	assert.False(t, resp.IsOpen)
}

func TestCheckout_MockMode(t *testing.T) {
	env := newTestEnv(t, nil)
	visitor := uuid.NewString()
	var resp ErrorResponse

	rec := env.do(t, http.MethodPost, "/api/v1/cart/checkout", visitor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "cart_empty", resp.Code)

	env.do(t, http.MethodPost, "/api/v1/cart/items", visitor, AddItemRequestDTO{ProductID: "hydration-sticks", Quantity: 1})
	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", visitor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "checkout_unavailable", resp.Code)
}

func TestGetCart_BackendDownReportsSyncError(t *testing.T) {
	env := newTestEnv(t, downCommerce{})

	rec := env.do(t, http.MethodGet, "/api/v1/cart", uuid.NewString(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
	assert.False(t, resp.MockMode)
	assert.False(t, resp.IsUpdating)
	assert.NotEmpty(t, resp.SyncError)
}

func TestAddItem_BackendDownKeepsCartAndSkipsTracking(t *testing.T) {
	env := newTestEnv(t, downCommerce{})

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", uuid.NewString(),
		AddItemRequestDTO{ProductID: "hydration-sticks", Quantity: 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
	assert.NotEmpty(t, resp.SyncError)

	env.gateway.Wait()
	assert.Empty(t, env.sink.named(tracking.EventAddToCart))
}
