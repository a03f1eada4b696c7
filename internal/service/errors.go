package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these onto
// the response codes with errors.Is.
var (
	ErrEmailTaken             = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDisabled        = errors.New("account disabled")
	ErrUserNotFound           = errors.New("user not found")
	ErrForbidden              = errors.New("operation not allowed for this account")
	ErrValidation             = errors.New("validation failed")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryHasProducts    = errors.New("category still has products")
	ErrSlugTaken              = errors.New("slug already in use")
	ErrProductNotFound        = errors.New("product not found")
	ErrProductNotAvailable    = errors.New("product is not available")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrStockConflict          = errors.New("stock changed during checkout")
	ErrCartEmpty              = errors.New("cart is empty")
	ErrCartItemNotFound       = errors.New("cart item not found")
	ErrStoreNotFound          = errors.New("store not found")
	ErrStoreExists            = errors.New("vendor already has a store")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderNumberConflict    = errors.New("order number collision")
	ErrOrderStatusInvalid     = errors.New("invalid order status transition")
	ErrOrderCancelNotAllowed  = errors.New("order can no longer be cancelled")
	ErrPaymentMethodInvalid   = errors.New("unsupported payment method")
)

// StockError carries the offending product so handlers can surface an
// actionable message. Unwraps to ErrInsufficientStock,
// ErrStockConflict or ErrProductNotAvailable.
type StockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
	Reason      error
}

func (e *StockError) Error() string {
	if errors.Is(e.Reason, ErrInsufficientStock) {
		return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
			e.ProductName, e.Requested, e.Available)
	}
	if errors.Is(e.Reason, ErrStockConflict) {
		return fmt.Sprintf("stock changed during checkout for %q, please try again", e.ProductName)
	}
	return fmt.Sprintf("product %q is no longer available", e.ProductName)
}

func (e *StockError) Unwrap() error {
	return e.Reason
}
