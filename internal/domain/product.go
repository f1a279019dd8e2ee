package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Stock is the only field the
// order flow mutates, and only through the repository's conditional decrement.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	ImageURL    string     `json:"imageUrl" db:"image_url"`
	Stock       int        `json:"stock" db:"stock"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Category represents a product category. Names are unique case-insensitively.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// StockSnapshot is the slice of product state the order flow reads: the price
// and name frozen into the order line, and the stock level for the pre-check.
type StockSnapshot struct {
	Name  string
	Price float64
	Stock int
}
