package domain

import "github.com/shopspring/decimal"

const (
	DefaultRating  = 5.0
	DefaultReviews = 0
)

// PricingTier is a predefined quantity/price bundle offered for a product.
type PricingTier struct {
	ID            string           `json:"id" yaml:"id"`
	Quantity      int              `json:"quantity" yaml:"quantity"`
	Label         string           `json:"label" yaml:"label"`
	Price         decimal.Decimal  `json:"price" yaml:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Badge         *string          `json:"badge,omitempty" yaml:"badge,omitempty"`
	// VariantID is the remote variant this tier is sold as. Empty for
	// catalogs that only exist locally.
	VariantID string `json:"variant_id,omitempty" yaml:"variant_id,omitempty"`
}

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Product is a purchasable catalog item. Optional fields are nil (or empty)
// when the source did not provide them; Rating and Reviews fall back to
// DefaultRating and DefaultReviews.
type Product struct {
	ID            string           `json:"id" yaml:"id"`
	Name          string           `json:"name" yaml:"name"`
	Category      string           `json:"category" yaml:"category"`
	Rating        float64          `json:"rating" yaml:"rating"`
	Reviews       int              `json:"reviews" yaml:"reviews"`
	Image         string           `json:"image" yaml:"image"`
	Price         decimal.Decimal  `json:"price" yaml:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Tiers         []PricingTier    `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	// SubscriptionDiscount is a fraction in [0,1), e.g. 0.15 for 15% off.
	SubscriptionDiscount *float64 `json:"subscription_discount,omitempty" yaml:"subscription_discount,omitempty"`
	FAQs                 []FAQ    `json:"faqs,omitempty" yaml:"faqs,omitempty"`
	// VariantID is the remote variant sold when no tier applies.
	VariantID string `json:"variant_id,omitempty" yaml:"variant_id,omitempty"`
}

// TierByID returns the tier with the given id.
func (p Product) TierByID(id string) (PricingTier, bool) {
	for _, t := range p.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return PricingTier{}, false
}
