package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTable maps a JSONL file to its SQLite table. The order of
// jsonlTableMapping matters: tables with foreign keys load after the tables
// they reference.
type jsonlTable struct {
	file    string
	table   string
	columns []string
	orderBy string
	// jsonColumns hold JSON documents stored as TEXT. They are written to
	// JSONL as nested values rather than quoted strings.
	jsonColumns map[string]bool
}

var jsonlTableMapping = []jsonlTable{
	{
		file:        articlesJSONL,
		table:       "articles",
		columns:     []string{"article_id", "title", "description", "localized", "created_at"},
		orderBy:     "article_id",
		jsonColumns: map[string]bool{"localized": true},
	},
	{
		file:        lessonsJSONL,
		table:       "lessons",
		columns:     []string{"lesson_id", "title", "description", "video_url", "related_articles", "locked", "localized", "created_at"},
		orderBy:     "lesson_id",
		jsonColumns: map[string]bool{"related_articles": true, "localized": true},
	},
	{
		file:    productsJSONL,
		table:   "products",
		columns: []string{"product_id", "name", "description", "category", "price", "image_url", "created_at"},
		orderBy: "product_id",
	},
	{
		file:    cartsJSONL,
		table:   "carts",
		columns: []string{"cart_id", "created_at", "updated_at"},
		orderBy: "created_at, cart_id",
	},
	{
		file:    cartLinesJSONL,
		table:   "cart_lines",
		columns: []string{"cart_id", "product_id", "quantity", "position"},
		orderBy: "cart_id, position",
	},
}

// mappingFor returns the JSONL mapping for a SQLite table name.
func mappingFor(table string) (jsonlTable, bool) {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m, true
		}
	}
	return jsonlTable{}, false
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records into
// the corresponding SQLite table. Loading is transactional: either every file
// loads or the database stays empty. Malformed lines and records that violate
// constraints are skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disabling foreign keys for load: %w", err)
	}

	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dataDir, mapping.file)
		records, err := readJSONL(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}

		if len(records) == 0 {
			continue
		}

		if err := insertRecords(tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("re-enabling foreign keys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}

	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// columns listed in the mapping are extracted.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			// Nested JSON values go back into TEXT columns as documents.
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			default:
				args[i] = val
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			// Constraint violations skip the record.
			continue
		}
	}

	return nil
}
