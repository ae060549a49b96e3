package services

import (
	"errors"
	"fmt"

	"scanlane/internal/repos"
)

// ErrEmptyCart: settlement attempted with no lines. No side effects.
var ErrEmptyCart = errors.New("cart is empty")

// ErrConflict: the storage layer kept conflicting after bounded retries.
// Nothing was committed; the whole operation may be retried.
var ErrConflict = repos.ErrBusy

// InsufficientStockError is recoverable: the cart and catalog are exactly
// as they were before the call.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// IsInsufficientStock reports whether err is a stock-ceiling or
// settlement-time stock rejection.
func IsInsufficientStock(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}
