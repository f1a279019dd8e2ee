package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusSubmitted is the only order status; orders have no further
// lifecycle once placed.
const OrderStatusSubmitted = "submitted"

// OrderItem is the frozen copy of a product's name and price captured at
// placement time. It is never re-derived from the live product, so later
// catalog edits cannot alter a placed order.
type OrderItem struct {
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// Order is created exactly once per successful placement and is immutable
// thereafter. Total is the sum of price*quantity across all items, rounded
// exactly once.
type Order struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total" db:"total"`
	Status    string      `json:"status" db:"status"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderLine is one requested line of an incoming order before validation.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}
