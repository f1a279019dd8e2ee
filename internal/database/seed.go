package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type seedCategory struct {
	id   uuid.UUID
	name string
}

type seedProduct struct {
	id          uuid.UUID
	name        string
	description string
	price       float64
	category    uuid.UUID
	imageURL    string
	stock       int
}

// Stable IDs so reseeding never duplicates rows and storefront fixtures can
// reference them.
var seedCategories = []seedCategory{
	{uuid.MustParse("7d3f9a10-0001-4a61-8f22-6f1b2c3d4e5f"), "Coffee"},
	{uuid.MustParse("7d3f9a10-0002-4a61-8f22-6f1b2c3d4e5f"), "Tea"},
	{uuid.MustParse("7d3f9a10-0003-4a61-8f22-6f1b2c3d4e5f"), "Equipment"},
}

var seedProducts = []seedProduct{
	{
		id:          uuid.MustParse("9c5e1b20-0001-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Espresso Beans",
		description: "Dark roast arabica, 1kg bag",
		price:       14.90,
		category:    seedCategories[0].id,
		imageURL:    "https://cdn.example.com/products/espresso-beans.jpg",
		stock:       25,
	},
	{
		id:          uuid.MustParse("9c5e1b20-0002-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Filter Blend",
		description: "Medium roast blend for pour-over, 500g",
		price:       9.50,
		category:    seedCategories[0].id,
		imageURL:    "https://cdn.example.com/products/filter-blend.jpg",
		stock:       40,
	},
	{
		id:          uuid.MustParse("9c5e1b20-0003-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Sencha Green Tea",
		description: "Loose leaf Japanese sencha, 100g tin",
		price:       7.25,
		category:    seedCategories[1].id,
		imageURL:    "https://cdn.example.com/products/sencha.jpg",
		stock:       18,
	},
	{
		id:          uuid.MustParse("9c5e1b20-0004-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Earl Grey",
		description: "Bergamot black tea, 20 bags",
		price:       4.80,
		category:    seedCategories[1].id,
		imageURL:    "https://cdn.example.com/products/earl-grey.jpg",
		stock:       0,
	},
	{
		id:          uuid.MustParse("9c5e1b20-0005-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Ceramic Dripper",
		description: "V-shaped ceramic dripper, size 02",
		price:       21.00,
		category:    seedCategories[2].id,
		imageURL:    "https://cdn.example.com/products/dripper.jpg",
		stock:       7,
	},
	{
		id:          uuid.MustParse("9c5e1b20-0006-4c83-9d44-7a2b3c4d5e6f"),
		name:        "Gooseneck Kettle",
		description: "Stainless steel pouring kettle, 1L",
		price:       39.95,
		category:    seedCategories[2].id,
		imageURL:    "https://cdn.example.com/products/kettle.jpg",
		stock:       3,
	},
}

// Seed inserts the demo catalog. Existing rows are left untouched, so
// running it on every startup is safe.
func Seed(db *sql.DB, logger *zap.Logger) error {
	for _, c := range seedCategories {
		_, err := db.Exec(
			`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			c.id, c.name,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.name, err)
		}
	}

	for _, p := range seedProducts {
		_, err := db.Exec(
			`INSERT INTO products (id, name, description, price, category_id, image_url, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT DO NOTHING`,
			p.id, p.name, p.description, p.price, p.category, p.imageURL, p.stock,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
	}

	logger.Info("Catalog seeding completed",
		zap.Int("categories", len(seedCategories)),
		zap.Int("products", len(seedProducts)),
	)
	return nil
}
