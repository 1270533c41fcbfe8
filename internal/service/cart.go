package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dinehq/api/internal/store"
)

// Errors returned by cart validation.
var (
	ErrEmptyCart        = errors.New("items are required")
	ErrMissingItemName  = errors.New("display_name is required")
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice = errors.New("invalid unit_price")
)

// ValidateCart checks the declared cart schema at the boundary: every item
// needs a display name, a positive quantity, and a parseable non-negative
// unit price.
func ValidateCart(items []store.CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for i, item := range items {
		if item.DisplayName == "" {
			return fmt.Errorf("items[%d]: %w", i, ErrMissingItemName)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
		}
	}
	return nil
}

// CartTotal returns the sum of quantity x unit_price over all items.
// Call ValidateCart first; a malformed price here is an error, not a zero.
func CartTotal(items []store.CartItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, item := range items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
		}
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total, nil
}
