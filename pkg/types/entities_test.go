package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleText(t *testing.T) {
	a := Article{
		ID:          1,
		Title:       "Verbs",
		Description: "Regular verbs",
		Localized: map[string]LocalizedText{
			"ka": {Title: "ზმნები"},
		},
	}

	title, desc := a.Text("ka")
	assert.Equal(t, "ზმნები", title)
	assert.Equal(t, "Regular verbs", desc, "missing localized description falls back")

	title, desc = a.Text("fr")
	assert.Equal(t, "Verbs", title)
	assert.Equal(t, "Regular verbs", desc)
}

func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name      string
		validate  func() error
		wantField string
	}{
		{
			name:     "valid article",
			validate: (&Article{ID: 1, Title: "A"}).Validate,
		},
		{
			name:      "article without title",
			validate:  (&Article{ID: 1}).Validate,
			wantField: "title",
		},
		{
			name:      "article without id",
			validate:  (&Article{Title: "A"}).Validate,
			wantField: "id",
		},
		{
			name:     "lesson with zero related refs is valid",
			validate: (&Lesson{ID: 2, Title: "L", RelatedArticles: []int64{0, 0, 7}}).Validate,
		},
		{
			name:      "lesson with malformed video url",
			validate:  (&Lesson{ID: 2, Title: "L", VideoURL: "not a url"}).Validate,
			wantField: "video_url",
		},
		{
			name:     "free product",
			validate: (&Product{ID: 3, Name: "Workbook", Price: decimal.Zero}).Validate,
		},
		{
			name:      "negative price",
			validate:  (&Product{ID: 3, Name: "Workbook", Price: decimal.RequireFromString("-0.01")}).Validate,
			wantField: "price",
		},
		{
			name:     "valid cart",
			validate: (&Cart{CartID: "c", Lines: []CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}}).Validate,
		},
		{
			name:      "cart line below quantity floor",
			validate:  (&Cart{CartID: "c", Lines: []CartLine{{ProductID: 1, Quantity: 0}}}).Validate,
			wantField: "quantity",
		},
		{
			name:      "cart with duplicate product",
			validate:  (&Cart{CartID: "c", Lines: []CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 3}}}).Validate,
			wantField: "lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidData)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.NotEmpty(t, verr.Fields[0].Error)
		})
	}
}

func TestLessonUnlock(t *testing.T) {
	l := Lesson{ID: 1, Title: "Intro", Locked: true}
	l.Unlock()
	assert.False(t, l.Locked)
	l.Unlock()
	assert.False(t, l.Locked, "unlock is idempotent")
}

func TestValidationMessagesAreTranslated(t *testing.T) {
	err := (&Article{ID: 1}).Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "title is a required field", verr.Fields[0].Error)
	assert.EqualError(t, err, "invalid article: title is a required field")
}
