package cart

import (
	"errors"
	"fmt"
)

// Rule violations returned by the cart transitions. Match them with
// errors.Is; the concrete value is a *RuleError.
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInactiveProduct      = errors.New("inactive products cannot be added to the cart")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrQuantityBelowMinimum = errors.New("quantity below minimum")
	ErrQuantityAboveMaximum = errors.New("quantity above maximum")
	ErrItemNotFound         = errors.New("product not found in cart")
)

// RuleError carries the context of a rejected transition.
type RuleError struct {
	Kind      error
	ProductID uint
	Requested int
	Limit     int
}

func (e *RuleError) Error() string {
	switch e.Kind {
	case ErrInsufficientStock:
		return fmt.Sprintf("insufficient stock: only %d units available", e.Limit)
	case ErrQuantityBelowMinimum:
		return fmt.Sprintf("the minimum quantity is %d units", e.Limit)
	case ErrQuantityAboveMaximum:
		return fmt.Sprintf("the maximum quantity is %d units", e.Limit)
	}
	return e.Kind.Error()
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func ruleError(kind error, productID uint, requested, limit int) *RuleError {
	return &RuleError{Kind: kind, ProductID: productID, Requested: requested, Limit: limit}
}
