// Package sqlite provides the public API for the SQLite catalog backend.
// It exposes the factory while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/academy/internal/sqlite"
	"github.com/mesh-intelligence/academy/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	catalog := sqlite.NewBackend()
//	err := catalog.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".academy-db",
//	})
//	defer catalog.Detach()
func NewBackend() types.Catalog {
	return sqlite.NewBackend()
}
