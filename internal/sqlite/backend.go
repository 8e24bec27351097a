// Package sqlite implements the SQLite storage backend for the academy
// catalog. SQLite is the query engine; the JSONL files in DataDir are the
// source of truth and are reloaded on every Attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/academy/pkg/types"
)

// dbFileName is the SQLite file created inside DataDir.
const dbFileName = "academy.db"

// Backend implements the Catalog interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]types.Table

	// dirty holds SQLite tables whose JSONL file is stale (on_close sync).
	dirty map[string]bool
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]types.Table),
		dirty:  make(map[string]bool),
	}
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrCatalogDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCatalogDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, builds a fresh SQLite database from
// the JSONL files, and creates table accessors.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// PRAGMA foreign_keys is per connection.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	b.db = db
	b.config = config
	b.dirty = make(map[string]bool)
	b.attached = true

	b.tables[types.TableArticles] = &articlesTable{backend: b}
	b.tables[types.TableLessons] = &lessonsTable{backend: b}
	b.tables[types.TableProducts] = &productsTable{backend: b}
	b.tables[types.TableCarts] = &cartsTable{backend: b}

	return nil
}

// Detach releases all resources held by the backend. With the on_close sync
// strategy, stale JSONL files are flushed first. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.flushDirtyLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)

	return nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// checkAttached returns ErrCatalogDetached after Detach. The caller must
// hold b.mu.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return types.ErrCatalogDetached
	}
	return nil
}

// persist writes the JSONL files of the given SQLite tables, or marks them
// dirty when the sync strategy defers writes to Detach. The caller must hold
// b.mu for writing.
func (b *Backend) persist(tables ...string) error {
	if b.config.EffectiveSyncStrategy() == types.SyncOnClose {
		for _, t := range tables {
			b.dirty[t] = true
		}
		return nil
	}
	for _, t := range tables {
		if err := persistTableJSONL(b.db, b.config.DataDir, t); err != nil {
			return fmt.Errorf("persisting %s: %w", t, err)
		}
	}
	return nil
}

// flushDirtyLocked writes every dirty table's JSONL file in mapping order.
// The caller must hold b.mu for writing.
func (b *Backend) flushDirtyLocked() error {
	for _, m := range jsonlTableMapping {
		if !b.dirty[m.table] {
			continue
		}
		if err := persistTableJSONL(b.db, b.config.DataDir, m.table); err != nil {
			return fmt.Errorf("flush %s: %w", m.table, err)
		}
		delete(b.dirty, m.table)
	}
	return nil
}

// generateUUID generates a new UUID v7 for cart IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
