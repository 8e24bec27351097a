// Package slots places a lesson's related articles onto the fixed-size grid
// shown beside the lesson video.
package slots

import (
	"errors"

	"github.com/mesh-intelligence/academy/pkg/types"
)

// DefaultSlotCount is the size of the related-articles grid.
const DefaultSlotCount = 4

// PlaceholderTitle is the title of the sentinel article used when the
// collection has no articles at all.
const PlaceholderTitle = "No Article"

// ErrInvalidSlotCount is returned when Fill is asked for a grid with no slots.
// It signals a configuration bug in the caller and is not retryable.
var ErrInvalidSlotCount = errors.New("slot count must be positive")

// Placeholder returns the sentinel article (ID 0).
func Placeholder() types.Article {
	return types.Article{ID: 0, Title: PlaceholderTitle}
}

// Fill returns exactly slotCount articles for display.
//
// Slot i holds preferred[i] when that reference is non-zero, resolves to an
// article, and was not already placed in an earlier slot. Remaining slots are
// filled in index order from the unused articles in collection order. When
// those run out, articles[0] is repeated; when articles is empty every slot
// gets the Placeholder.
//
// Fill does not modify its arguments.
func Fill(preferred []int64, articles []types.Article, slotCount int) ([]types.Article, error) {
	if slotCount <= 0 {
		return nil, ErrInvalidSlotCount
	}

	byID := make(map[int64]types.Article, len(articles))
	for _, a := range articles {
		if _, dup := byID[a.ID]; !dup {
			byID[a.ID] = a
		}
	}

	out := make([]types.Article, slotCount)
	filled := make([]bool, slotCount)
	used := make(map[int64]bool, slotCount)

	for i := 0; i < slotCount && i < len(preferred); i++ {
		id := preferred[i]
		if id == 0 || used[id] {
			continue
		}
		a, ok := byID[id]
		if !ok {
			continue
		}
		out[i] = a
		filled[i] = true
		used[id] = true
	}

	next := 0
	for i := range out {
		if filled[i] {
			continue
		}
		out[i] = nextFiller(articles, used, &next)
	}
	return out, nil
}

// nextFiller advances cursor through articles and returns the next one whose
// id is not in used. used holds only the first-pass placements.
func nextFiller(articles []types.Article, used map[int64]bool, cursor *int) types.Article {
	for *cursor < len(articles) {
		a := articles[*cursor]
		*cursor++
		if !used[a.ID] {
			return a
		}
	}
	if len(articles) > 0 {
		return articles[0]
	}
	return Placeholder()
}
