package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one cart line. Specifications is a denormalized snapshot of the
// product at add time and never changes afterwards; CustomSpecs is the
// customer's free-text override and the only spec field a mutation may
// touch.
type Item struct {
	ProductID      string           `json:"product_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Specifications *string          `json:"specifications,omitempty"`
	CustomSpecs    *string          `json:"custom_specs,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	Quantity       int              `json:"quantity"`
}

// EffectiveSpecs returns the customer's override when set, otherwise the
// product snapshot.
func (i Item) EffectiveSpecs() *string {
	if i.CustomSpecs != nil {
		return i.CustomSpecs
	}
	return i.Specifications
}

// Cart is the in-memory item collection for one user. A request loads it
// from the snapshot, applies exactly one mutation, and persists it back, so
// no locking is needed inside the type. Item order is insertion order and
// stays stable across mutations.
type Cart struct {
	items []Item
}

// NewCart builds a cart from existing items, sanitizing each one.
func NewCart(items []Item) *Cart {
	c := &Cart{items: make([]Item, 0, len(items))}
	for _, item := range items {
		c.items = append(c.items, sanitizeItem(item))
	}
	return c
}

// AddItem appends the item, or increments the quantity when an item with the
// same product id is already present. Inline data-URI images are stripped
// before the item enters the cart.
func (c *Cart) AddItem(item Item) {
	item = sanitizeItem(item)
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// RemoveItem deletes the item with the given product id. Removing an absent
// item is a no-op.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for an item. A quantity below one removes
// the item. Returns false when no item with the product id exists.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if quantity < 1 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			} else {
				c.items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// UpdateCustomSpecs replaces the per-item specification override. A nil or
// blank value clears the override, reverting the item to its product
// snapshot. The snapshot itself is never modified. Returns false when no
// item with the product id exists.
func (c *Cart) UpdateCustomSpecs(productID string, specs *string) bool {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if specs == nil || strings.TrimSpace(*specs) == "" {
				c.items[i].CustomSpecs = nil
			} else {
				value := *specs
				c.items[i].CustomSpecs = &value
			}
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// IsInCart reports whether an item with the product id is present.
func (c *Cart) IsInCart(productID string) bool {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// TotalItems returns the sum of all item quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for i := range c.items {
		total += c.items[i].Quantity
	}
	return total
}

// Len returns the number of distinct items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the item list in stable order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// sanitizeItem drops inline data-URI images so they can never reach the
// persisted snapshot.
func sanitizeItem(item Item) Item {
	if item.ImageURL != nil && strings.HasPrefix(strings.TrimSpace(*item.ImageURL), "data:image") {
		item.ImageURL = nil
	}
	return item
}
