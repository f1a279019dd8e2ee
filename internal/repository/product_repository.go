package repository

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository is the data access layer for the catalog and the sole
// gateway to product stock for the order flow.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, limit int) ([]*domain.Product, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)

	// FetchByIDs returns current snapshots for the requested ids that exist;
	// missing ids are simply absent from the result.
	FetchByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.StockSnapshot, error)

	// ReserveAll decrements stock for every line, each decrement conditional
	// on stock >= quantity at the moment of the update, and reports how many
	// lines matched. All decrements run in one transaction that commits only
	// when every line matched, so a shortfall leaves stock untouched.
	ReserveAll(ctx context.Context, lines []domain.OrderLine) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, image_url, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImageURL,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product. Stock set here is an admin correction;
// the order flow never writes stock through this path.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5,
		    image_url = $6, stock = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImageURL,
		product.Stock,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, category_id, image_url, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.ImageURL,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with optional category filtering, capped at limit.
func (r *productRepository) List(ctx context.Context, categoryID *uuid.UUID, limit int) ([]*domain.Product, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, price, category_id, image_url, stock, created_at, updated_at
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d
	`, whereClause, argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Search searches products by name or description, case-insensitively.
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, nil, limit)
	}

	searchPattern := "%" + query + "%"
	searchQuery := `
		SELECT id, name, description, price, category_id, image_url, stock, created_at, updated_at
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// CountByCategory reports how many products reference the category. Used as
// the referential guard before category deletion.
func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}
	return count, nil
}

// FetchByIDs returns price/name/stock snapshots for the ids that exist.
func (r *productRepository) FetchByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.StockSnapshot, error) {
	snapshots := make(map[uuid.UUID]domain.StockSnapshot, len(ids))
	if len(ids) == 0 {
		return snapshots, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, stock
		FROM products
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var snap domain.StockSnapshot
		if err := rows.Scan(&id, &snap.Name, &snap.Price, &snap.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product snapshot: %w", err)
		}
		snapshots[id] = snap
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product snapshots: %w", err)
	}

	return snapshots, nil
}

// ReserveAll performs the conditional decrements for all lines in a single
// transaction. Each UPDATE matches only while stock >= quantity, so two
// concurrent reservations can never both take the last unit. The transaction
// commits only when every line matched; otherwise it rolls back and the
// matched count tells the caller the reservation failed as a whole.
//
// Decrements run in product id order regardless of request order, so two
// reservations touching the same products always take their row locks in the
// same sequence and cannot deadlock each other.
func (r *productRepository) ReserveAll(ctx context.Context, lines []domain.OrderLine) (int, error) {
	ordered := make([]domain.OrderLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reservation: %w", err)
	}
	defer tx.Rollback()

	matched := 0
	for _, line := range ordered {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2
			WHERE id = $1 AND stock >= $2
		`, line.ProductID, line.Quantity)
		if err != nil {
			return matched, fmt.Errorf("failed to reserve stock for %s: %w", line.ProductID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return matched, fmt.Errorf("failed to get rows affected: %w", err)
		}
		matched += int(rowsAffected)
	}

	if matched != len(ordered) {
		// Some line lost a race or had stale stock; rollback undoes the
		// lines that did match.
		return matched, nil
	}

	if err := tx.Commit(); err != nil {
		return matched, fmt.Errorf("failed to commit reservation: %w", err)
	}

	return matched, nil
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.CategoryID,
			&product.ImageURL,
			&product.Stock,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
