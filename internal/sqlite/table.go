package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/academy/pkg/types"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// parseEntityID parses the string form of an integer entity ID.
func parseEntityID(id string) (int64, error) {
	if id == "" {
		return 0, types.ErrInvalidID
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, types.ErrInvalidID
	}
	return n, nil
}

// resolveEntityID picks the ID for Set on an integer-keyed table: the id
// argument wins, then the entity's own ID, then max(id)+1.
func resolveEntityID(db *sql.DB, table, column, id string, current int64) (int64, error) {
	if id != "" {
		return parseEntityID(id)
	}
	if current > 0 {
		return current, nil
	}
	if current < 0 {
		return 0, types.ErrInvalidID
	}
	var next int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", column, table)
	if err := db.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", table, err)
	}
	return next, nil
}

// exists reports whether a row with the given key exists.
func exists(db *sql.DB, table, column string, key any) (bool, error) {
	var one int
	err := db.QueryRow(fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, column), key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s existence: %w", table, err)
	}
	return true, nil
}

// limitClause returns " LIMIT n" for a positive "limit" filter value.
func limitClause(filter map[string]any) (string, error) {
	v, ok := filter["limit"]
	if !ok {
		return "", nil
	}
	n, ok := toInt(v)
	if !ok {
		return "", types.ErrInvalidFilter
	}
	if n <= 0 {
		return "", nil
	}
	return fmt.Sprintf(" LIMIT %d", n), nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// toInt64s accepts the list shapes filters arrive in: typed slices from Go
// callers and []any of float64 from decoded JSON.
func toInt64s(v any) ([]int64, bool) {
	switch xs := v.(type) {
	case []int64:
		return xs, true
	case []int:
		out := make([]int64, len(xs))
		for i, x := range xs {
			out[i] = int64(x)
		}
		return out, true
	case []any:
		out := make([]int64, len(xs))
		for i, x := range xs {
			n, ok := toInt(x)
			if !ok {
				return nil, false
			}
			out[i] = int64(n)
		}
		return out, true
	default:
		return nil, false
	}
}

// marshalJSONColumn encodes v for a JSON TEXT column; empty values are NULL.
func marshalJSONColumn[T any](v T, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// unmarshalJSONColumn decodes a nullable JSON TEXT column into dst.
func unmarshalJSONColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a nullable RFC 3339 column; NULL is the zero time.
func parseTime(col sql.NullString) (time.Time, error) {
	if !col.Valid || col.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, col.String)
}
