package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct
// (*Article, *Lesson, *Product or *Cart).
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrInvalidID if the ID cannot be parsed for the table,
	// ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty and the entity has
	// no ID of its own, a new one is assigned (next integer for content
	// tables, UUID v7 for carts). Returns the actual ID used.
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Session errors.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
