package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var _ types.Table = (*productsTable)(nil)

const productColumns = "product_id, name, description, category, price, image_url, created_at"

// productsTable implements the Table interface for *types.Product.
type productsTable struct {
	backend *Backend
}

func (pt *productsTable) Get(id string) (any, error) {
	productID, err := parseEntityID(id)
	if err != nil {
		return nil, err
	}

	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if err := pt.backend.checkAttached(); err != nil {
		return nil, err
	}

	row := pt.backend.db.QueryRow("SELECT "+productColumns+" FROM products WHERE product_id = ?", productID)
	p, err := hydrateProduct(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", productID, err)
	}
	return p, nil
}

// Set creates or updates a product. Prices are stored as decimal strings so
// they survive the JSONL round trip without float rounding.
func (pt *productsTable) Set(id string, data any) (string, error) {
	p, ok := data.(*types.Product)
	if !ok || p == nil {
		return "", types.ErrInvalidData
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if err := pt.backend.checkAttached(); err != nil {
		return "", err
	}

	productID, err := resolveEntityID(pt.backend.db, "products", "product_id", id, p.ID)
	if err != nil {
		return "", err
	}
	p.ID = productID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	_, err = pt.backend.db.Exec(`
		INSERT INTO products (product_id, name, description, category, price, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			price = excluded.price,
			image_url = excluded.image_url`,
		p.ID, p.Name, p.Description, p.Category, p.Price.String(), p.ImageURL, formatTime(p.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("upserting product: %w", err)
	}

	if err := pt.backend.persist("products"); err != nil {
		return "", err
	}
	return strconv.FormatInt(p.ID, 10), nil
}

// Delete removes a product and every cart line that holds it.
func (pt *productsTable) Delete(id string) error {
	productID, err := parseEntityID(id)
	if err != nil {
		return err
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if err := pt.backend.checkAttached(); err != nil {
		return err
	}

	found, err := exists(pt.backend.db, "products", "product_id", productID)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}

	tx, err := pt.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cart_lines WHERE product_id = ?", productID); err != nil {
		return fmt.Errorf("deleting cart lines: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM products WHERE product_id = ?", productID); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return pt.backend.persist("products", "cart_lines")
}

// Fetch returns products ordered by ID. Supported filters: "category"
// (case-insensitive) and "limit".
func (pt *productsTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT " + productColumns + " FROM products"
	var args []any

	if v, ok := filter["category"]; ok {
		category, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE category = ? COLLATE NOCASE"
		args = append(args, category)
	}
	query += " ORDER BY product_id"

	limit, err := limitClause(filter)
	if err != nil {
		return nil, err
	}
	query += limit

	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if err := pt.backend.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := pt.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		p, err := hydrateProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func hydrateProduct(row scanner) (*types.Product, error) {
	var p types.Product
	var description, category, price, imageURL, createdAt sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &description, &category, &price, &imageURL, &createdAt); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.ImageURL = imageURL.String

	var err error
	if p.Price, err = decimal.NewFromString(price.String); err != nil {
		return nil, fmt.Errorf("parsing price %q: %w", price.String, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}
