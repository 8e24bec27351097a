// Package search filters article and product collections in memory, the way
// the catalog pages narrow what is already loaded.
package search

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/academy/pkg/types"
)

// ArticleQuery selects articles whose text contains every term of Text.
// Lang adds that language's localized title and description to the haystack.
type ArticleQuery struct {
	Text string
	Lang string
}

// ProductQuery selects products by text, category and an inclusive price
// range. Zero-valued fields do not filter.
type ProductQuery struct {
	Text     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Articles returns the articles matching q in their original order.
func Articles(articles []types.Article, q ArticleQuery) []types.Article {
	terms := fields(q.Text)
	out := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		hay := []string{a.Title, a.Description}
		if q.Lang != "" {
			title, desc := a.Text(q.Lang)
			hay = append(hay, title, desc)
		}
		if matchAll(terms, hay) {
			out = append(out, a)
		}
	}
	return out
}

// Products returns the products matching q in their original order.
func Products(products []types.Product, q ProductQuery) []types.Product {
	terms := fields(q.Text)
	category := fold(strings.TrimSpace(q.Category))
	out := make([]types.Product, 0, len(products))
	for _, p := range products {
		if category != "" && fold(p.Category) != category {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if !matchAll(terms, []string{p.Name, p.Description}) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func fields(text string) []string {
	terms := strings.Fields(text)
	for i, t := range terms {
		terms[i] = fold(t)
	}
	return terms
}

// matchAll reports whether every term occurs in at least one haystack string.
func matchAll(terms, haystack []string) bool {
	if len(terms) == 0 {
		return true
	}
	folded := make([]string, len(haystack))
	for i, h := range haystack {
		folded[i] = fold(h)
	}
	for _, term := range terms {
		found := false
		for _, h := range folded {
			if strings.Contains(h, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
