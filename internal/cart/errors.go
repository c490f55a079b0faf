package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("line item not found in cart")
	// ErrSyncFailed wraps remote failures. The cart is left as it was after
	// the last successful reconciliation.
	ErrSyncFailed = errors.New("cart sync failed")
)
