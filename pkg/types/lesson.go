package types

import "time"

// Lesson is a video lesson. RelatedArticles is the ordered list of preferred
// article references shown beside the lesson; a zero entry means "no
// preference for this slot" and ids that match no article are tolerated.
type Lesson struct {
	ID              int64                    `json:"id" validate:"gt=0"`
	Title           string                   `json:"title" validate:"required"`
	Description     string                   `json:"description,omitempty"`
	VideoURL        string                   `json:"video_url,omitempty" validate:"omitempty,url"`
	RelatedArticles []int64                  `json:"related_articles,omitempty"`
	Locked          bool                     `json:"locked"`
	Localized       map[string]LocalizedText `json:"localized,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

// Text returns the title and description for lang.
func (l Lesson) Text(lang string) (title, description string) {
	return localize(l.Localized, lang, l.Title, l.Description)
}

// Unlock clears the lock. Idempotent.
func (l *Lesson) Unlock() {
	l.Locked = false
}

// Validate checks the lesson fields.
func (l *Lesson) Validate() error {
	return validateEntity("lesson", l)
}
