package types

import "time"

// DefaultCartID names the cart used when the caller does not pick one.
const DefaultCartID = "default"

// CartLine is the persisted form of a cart entry.
type CartLine struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// Cart is the persisted form of a shopping cart. Lines keep insertion order
// and are unique by product.
type Cart struct {
	CartID    string     `json:"cart_id"`
	Lines     []CartLine `json:"lines" validate:"unique=ProductID,dive"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks every line has a positive quantity and that no product
// appears twice.
func (c *Cart) Validate() error {
	return validateEntity("cart", c)
}
