package domain

import "github.com/shopspring/decimal"

// LineItem is one row of a cart. It carries the product shape it was added
// with, a quantity that is always >= 1 and an optional variant label
// ("Single (Subscription)", "Single (One-Time)", ...).
type LineItem struct {
	Product
	// LineID identifies the row. In remote mode it is the backend's line item
	// id, in mock mode it equals the product id.
	LineID       string `json:"line_id"`
	Quantity     int    `json:"quantity"`
	VariantLabel string `json:"variant_label,omitempty"`
}

// LineKey is the merge identity of a line item.
type LineKey struct {
	ProductID    string
	VariantLabel string
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ID, VariantLabel: l.VariantLabel}
}

func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a point-in-time copy of a cart store.
type Cart struct {
	Items       []LineItem `json:"items"`
	CheckoutURL string     `json:"checkout_url,omitempty"`
	IsOpen      bool       `json:"is_open"`
	IsUpdating  bool       `json:"is_updating"`
}

// Subtotal is the sum of price x quantity over all lines.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// FreeShippingProgress returns subtotal/threshold clamped to [0, 1].
func (c Cart) FreeShippingProgress(threshold decimal.Decimal) float64 {
	if !threshold.IsPositive() {
		return 1
	}
	progress := c.Subtotal().Div(threshold).InexactFloat64()
	if progress > 1 {
		return 1
	}
	if progress < 0 {
		return 0
	}
	return progress
}
