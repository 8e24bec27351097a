package types

import "time"

// LocalizedText holds the per-language variants of an entity's display fields.
type LocalizedText struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Article is a piece of written content that lessons reference as
// "related articles". Articles are owned by the content store; the core only
// reads them.
type Article struct {
	ID          int64                    `json:"id" validate:"gt=0"`
	Title       string                   `json:"title" validate:"required"`
	Description string                   `json:"description,omitempty"`
	Localized   map[string]LocalizedText `json:"localized,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// Text returns the title and description for lang. Missing localized fields
// fall back to the default ones.
func (a Article) Text(lang string) (title, description string) {
	return localize(a.Localized, lang, a.Title, a.Description)
}

// Validate checks the article fields. Returns a *ValidationError wrapping
// ErrInvalidData on failure.
func (a *Article) Validate() error {
	return validateEntity("article", a)
}

func localize(variants map[string]LocalizedText, lang, title, description string) (string, string) {
	lt, ok := variants[lang]
	if !ok {
		return title, description
	}
	if lt.Title != "" {
		title = lt.Title
	}
	if lt.Description != "" {
		description = lt.Description
	}
	return title, description
}
