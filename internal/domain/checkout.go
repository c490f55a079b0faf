package domain

import "github.com/shopspring/decimal"

// CheckoutSession is the backend's view of an in-progress order.
type CheckoutSession struct {
	ID        string
	WebURL    string
	Completed bool
	Lines     []CheckoutLine
}

// CheckoutLine is a line item as reported by the commerce backend. ID is
// assigned by the backend and differs from ProductID.
type CheckoutLine struct {
	ID           string
	ProductID    string
	VariantID    string
	Title        string
	VariantTitle string
	UnitPrice    decimal.Decimal
	Quantity     int
	Image        string
}

// RemoteProduct is a product as listed by the commerce backend.
type RemoteProduct struct {
	ID           string
	Title        string
	ProductType  string
	Image        string
	Rating       *float64
	ReviewCount  *int
	Price        decimal.Decimal
	ComparePrice *decimal.Decimal
	Variants     []RemoteVariant
}

type RemoteVariant struct {
	ID           string
	Title        string
	Price        decimal.Decimal
	ComparePrice *decimal.Decimal
}
