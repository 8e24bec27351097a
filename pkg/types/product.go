package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a marketplace item that can be put in a cart.
type Product struct {
	ID          int64           `json:"id" validate:"gt=0"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL    string          `json:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the product fields; the price must be non-negative.
func (p *Product) Validate() error {
	return validateEntity("product", p)
}
