package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
)

const defaultCategory = "Wellness"

// MapRemoteProduct converts a backend product. Missing ratings and review
// counts take the domain defaults. Tiers are built only when the backend
// offers a choice of variants.
func MapRemoteProduct(rp domain.RemoteProduct) domain.Product {
	p := domain.Product{
		ID:            rp.ID,
		Name:          rp.Title,
		Category:      rp.ProductType,
		Rating:        domain.DefaultRating,
		Reviews:       domain.DefaultReviews,
		Image:         rp.Image,
		Price:         rp.Price,
		OriginalPrice: rp.ComparePrice,
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if rp.Rating != nil {
		p.Rating = *rp.Rating
	}
	if rp.ReviewCount != nil {
		p.Reviews = *rp.ReviewCount
	}
	if len(rp.Variants) > 0 {
		p.VariantID = rp.Variants[0].ID
	}
	if len(rp.Variants) > 1 {
		p.Tiers = make([]domain.PricingTier, 0, len(rp.Variants))
		for _, v := range rp.Variants {
			p.Tiers = append(p.Tiers, domain.PricingTier{
				ID:            v.ID,
				Quantity:      quantityFromTitle(v.Title),
				Label:         v.Title,
				Price:         v.Price,
				OriginalPrice: v.ComparePrice,
				VariantID:     v.ID,
			})
		}
	}
	return p
}

// quantityFromTitle reads the leading count of titles like "3 Pack".
func quantityFromTitle(title string) int {
	digits := strings.TrimLeftFunc(title, unicode.IsSpace)
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 1
	}
	if end > 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
