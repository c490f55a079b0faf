package commerce

import (
	"context"
	"errors"
	"strings"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
)

// Client is the subset of the hosted commerce backend the storefront uses.
// Every checkout mutation answers with the full session snapshot.
type Client interface {
	Products(ctx context.Context) ([]domain.RemoteProduct, error)
	CreateCheckout(ctx context.Context) (*domain.CheckoutSession, error)
	FetchCheckout(ctx context.Context, checkoutID string) (*domain.CheckoutSession, error)
	AddLines(ctx context.Context, checkoutID string, lines []LineInput) (*domain.CheckoutSession, error)
	RemoveLines(ctx context.Context, checkoutID string, lineIDs []string) (*domain.CheckoutSession, error)
	UpdateLines(ctx context.Context, checkoutID string, lines []LineUpdate) (*domain.CheckoutSession, error)
}

type LineInput struct {
	VariantID string
	Quantity  int
}

type LineUpdate struct {
	LineID   string
	Quantity int
}

var (
	// ErrCheckoutNotFound means the backend no longer knows the checkout id.
	ErrCheckoutNotFound = errors.New("checkout not found")
	ErrUserError        = errors.New("commerce user error")
)

var placeholderMarkers = []string{"your_", "your-", "placeholder", "xxxx", "changeme"}

// IsConfigured reports whether token looks like a real storefront access
// token. Empty tokens and template values put the storefront in mock mode.
func IsConfigured(domainName, token string) bool {
	if strings.TrimSpace(domainName) == "" || strings.TrimSpace(token) == "" {
		return false
	}
	lower := strings.ToLower(token)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
