package quoting

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

const (
	// MinQuantity and MaxQuantity bound a single quote request line.
	MinQuantity = 1
	MaxQuantity = 10000

	// MaxSpecificationsLen caps the free-text specification override.
	MaxSpecificationsLen = 2000
	// MaxMessageLen caps the customer's accompanying message.
	MaxMessageLen = 5000

	// MaxCartItems caps how many distinct products one cart may hold.
	MaxCartItems = 50
)

// ProductQuoteInput is the composed payload for a single-product quote request.
type ProductQuoteInput struct {
	ProductID      *string
	Quantity       int
	Specifications *string
	Message        string
}

// CartItemInput carries the fields of a cart entry that validation cares about.
type CartItemInput struct {
	ProductID string
	Name      string
	Quantity  int
}

// ValidateProductQuote checks the payload against the declared constraints and
// returns the first violation as a validation error whose message is shown to
// the user verbatim. It never panics and has no side effects.
func ValidateProductQuote(input ProductQuoteInput) error {
	if input.Quantity < MinQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Quantity > MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot exceed 10,000")
	}
	if input.Specifications != nil && len(*input.Specifications) > MaxSpecificationsLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "specifications must be 2,000 characters or fewer")
	}
	if len(input.Message) > MaxMessageLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "message must be 5,000 characters or fewer")
	}
	if input.ProductID != nil {
		if _, err := uuid.Parse(strings.TrimSpace(*input.ProductID)); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id must be a valid UUID")
		}
	}
	return nil
}

// ValidateCart checks the whole cart ahead of a bulk submission. The first
// violation wins; items after it are not inspected.
func ValidateCart(items []CartItemInput) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}
	if len(items) > MaxCartItems {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart cannot hold more than %d distinct items", MaxCartItems))
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if _, err := uuid.Parse(strings.TrimSpace(item.ProductID)); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart item product id must be a valid UUID").
				WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains the same product more than once").
				WithDetails(map[string]any{"index": i})
		}
		seen[item.ProductID] = struct{}{}

		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart item name is required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Quantity < MinQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"index": i, "product": item.Name})
		}
		if item.Quantity > MaxQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot exceed 10,000").
				WithDetails(map[string]any{"index": i, "product": item.Name})
		}
	}
	return nil
}
