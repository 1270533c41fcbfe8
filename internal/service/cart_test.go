package service

import (
	"errors"
	"testing"

	"github.com/dinehq/api/internal/store"
)

func TestValidateCart_Empty(t *testing.T) {
	if err := ValidateCart(nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got: %v", err)
	}
}

func TestValidateCart_MissingName(t *testing.T) {
	err := ValidateCart([]store.CartItem{cartItem("", 1, "2.00")})
	if !errors.Is(err, ErrMissingItemName) {
		t.Fatalf("expected ErrMissingItemName, got: %v", err)
	}
}

func TestValidateCart_ZeroQuantity(t *testing.T) {
	err := ValidateCart([]store.CartItem{cartItem("Tea", 0, "2.00")})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestValidateCart_NegativeQuantity(t *testing.T) {
	err := ValidateCart([]store.CartItem{cartItem("Tea", -1, "2.00")})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestValidateCart_BadPrice(t *testing.T) {
	err := ValidateCart([]store.CartItem{cartItem("Tea", 1, "free")})
	if !errors.Is(err, ErrInvalidUnitPrice) {
		t.Fatalf("expected ErrInvalidUnitPrice, got: %v", err)
	}
}

func TestValidateCart_NegativePrice(t *testing.T) {
	err := ValidateCart([]store.CartItem{cartItem("Tea", 1, "-2.00")})
	if !errors.Is(err, ErrInvalidUnitPrice) {
		t.Fatalf("expected ErrInvalidUnitPrice, got: %v", err)
	}
}

func TestValidateCart_OK(t *testing.T) {
	items := []store.CartItem{
		cartItem("Tea", 1, "2.00"),
		cartItem("Pie", 3, "4.25"),
	}
	if err := ValidateCart(items); err != nil {
		t.Fatalf("ValidateCart: %v", err)
	}
}

func TestCartTotal(t *testing.T) {
	items := []store.CartItem{
		cartItem("Tea", 2, "2.00"),
		cartItem("Pie", 3, "4.25"),
	}
	total, err := CartTotal(items)
	if err != nil {
		t.Fatalf("CartTotal: %v", err)
	}
	if total.StringFixed(2) != "16.75" {
		t.Errorf("total = %s, want 16.75", total.StringFixed(2))
	}
}

func TestCartTotal_BadPrice(t *testing.T) {
	_, err := CartTotal([]store.CartItem{cartItem("Tea", 1, "oops")})
	if !errors.Is(err, ErrInvalidUnitPrice) {
		t.Fatalf("expected ErrInvalidUnitPrice, got: %v", err)
	}
}
