package search

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var library = []types.Article{
	{ID: 1, Title: "Present tense", Description: "Regular verbs in the present"},
	{ID: 2, Title: "Past tense", Description: "Irregular VERBS"},
	{ID: 3, Title: "Numbers", Description: "Counting to ten", Localized: map[string]types.LocalizedText{
		"ka": {Title: "რიცხვები"},
	}},
}

func TestArticles(t *testing.T) {
	tests := []struct {
		name  string
		query ArticleQuery
		want  []int64
	}{
		{name: "empty query returns all", query: ArticleQuery{}, want: []int64{1, 2, 3}},
		{name: "case-insensitive", query: ArticleQuery{Text: "verbs"}, want: []int64{1, 2}},
		{name: "all terms must match", query: ArticleQuery{Text: "verbs past"}, want: []int64{2}},
		{name: "terms may match different fields", query: ArticleQuery{Text: "numbers ten"}, want: []int64{3}},
		{name: "localized title needs the language", query: ArticleQuery{Text: "რიცხვები"}, want: []int64{}},
		{name: "localized title with language", query: ArticleQuery{Text: "რიცხვები", Lang: "ka"}, want: []int64{3}},
		{name: "no match", query: ArticleQuery{Text: "calculus"}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Articles(library, tt.query)
			ids := make([]int64, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestProducts(t *testing.T) {
	shop := []types.Product{
		{ID: 1, Name: "Grammar book", Category: "Books", Price: decimal.RequireFromString("12.50")},
		{ID: 2, Name: "Flash cards", Category: "cards", Price: decimal.RequireFromString("4")},
		{ID: 3, Name: "Workbook", Description: "Grammar exercises", Category: "books", Price: decimal.RequireFromString("8")},
	}
	lo := decimal.RequireFromString("5")
	hi := decimal.RequireFromString("10")

	tests := []struct {
		name  string
		query ProductQuery
		want  []int64
	}{
		{name: "everything", query: ProductQuery{}, want: []int64{1, 2, 3}},
		{name: "category ignores case", query: ProductQuery{Category: "BOOKS"}, want: []int64{1, 3}},
		{name: "text in name or description", query: ProductQuery{Text: "grammar"}, want: []int64{1, 3}},
		{name: "min price inclusive", query: ProductQuery{MinPrice: &lo}, want: []int64{1, 3}},
		{name: "max price", query: ProductQuery{MaxPrice: &hi}, want: []int64{2, 3}},
		{name: "combined", query: ProductQuery{Text: "grammar", MinPrice: &lo, MaxPrice: &hi}, want: []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Products(shop, tt.query)
			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
