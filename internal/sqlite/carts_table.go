package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var _ types.Table = (*cartsTable)(nil)

// cartsTable implements the Table interface for *types.Cart. A cart is one
// row in carts plus its ordered rows in cart_lines.
type cartsTable struct {
	backend *Backend
}

func (ct *cartsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if err := ct.backend.checkAttached(); err != nil {
		return nil, err
	}

	c, err := ct.getLocked(id)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart %s: %w", id, err)
	}
	return c, nil
}

func (ct *cartsTable) getLocked(id string) (*types.Cart, error) {
	var c types.Cart
	var createdAt, updatedAt sql.NullString
	err := ct.backend.db.QueryRow(
		"SELECT cart_id, created_at, updated_at FROM carts WHERE cart_id = ?", id,
	).Scan(&c.CartID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if c.Lines, err = ct.linesLocked(id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (ct *cartsTable) linesLocked(cartID string) ([]types.CartLine, error) {
	rows, err := ct.backend.db.Query(
		"SELECT product_id, quantity FROM cart_lines WHERE cart_id = ? ORDER BY position", cartID)
	if err != nil {
		return nil, fmt.Errorf("querying cart lines: %w", err)
	}
	defer rows.Close()

	lines := []types.CartLine{}
	for rows.Next() {
		var line types.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Set replaces a cart and all of its lines. An empty id with an empty
// CartID generates a new UUID v7.
func (ct *cartsTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Cart)
	if !ok || c == nil {
		return "", types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if err := ct.backend.checkAttached(); err != nil {
		return "", err
	}

	switch {
	case id != "":
		c.CartID = id
	case c.CartID == "":
		c.CartID = generateUUID()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	tx, err := ct.backend.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO carts (cart_id, created_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cart_id) DO UPDATE SET updated_at = excluded.updated_at`,
		c.CartID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("upserting cart: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM cart_lines WHERE cart_id = ?", c.CartID); err != nil {
		return "", fmt.Errorf("clearing cart lines: %w", err)
	}
	for i, line := range c.Lines {
		_, err := tx.Exec(
			"INSERT INTO cart_lines (cart_id, product_id, quantity, position) VALUES (?, ?, ?, ?)",
			c.CartID, line.ProductID, line.Quantity, i)
		if err != nil {
			return "", fmt.Errorf("inserting cart line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing cart: %w", err)
	}

	if err := ct.backend.persist("carts", "cart_lines"); err != nil {
		return "", err
	}
	return c.CartID, nil
}

// Delete removes a cart and its lines.
func (ct *cartsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if err := ct.backend.checkAttached(); err != nil {
		return err
	}

	found, err := exists(ct.backend.db, "carts", "cart_id", id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}

	tx, err := ct.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cart_lines WHERE cart_id = ?", id); err != nil {
		return fmt.Errorf("deleting cart lines: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM carts WHERE cart_id = ?", id); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return ct.backend.persist("carts", "cart_lines")
}

// Fetch returns every cart ordered by creation time. Only "limit" is
// supported.
func (ct *cartsTable) Fetch(filter map[string]any) ([]any, error) {
	limit, err := limitClause(filter)
	if err != nil {
		return nil, err
	}

	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if err := ct.backend.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := ct.backend.db.Query("SELECT cart_id FROM carts ORDER BY created_at, cart_id" + limit)
	if err != nil {
		return nil, fmt.Errorf("querying carts: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning cart id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// SetMaxOpenConns(1): the id cursor must be closed before loading lines.
	results := []any{}
	for _, id := range ids {
		c, err := ct.getLocked(id)
		if err != nil {
			return nil, fmt.Errorf("loading cart %s: %w", id, err)
		}
		results = append(results, c)
	}
	return results, nil
}
