package slots

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/academy/pkg/types"
)

func articles(ids ...int64) []types.Article {
	out := make([]types.Article, len(ids))
	for i, id := range ids {
		out[i] = types.Article{ID: id, Title: fmt.Sprintf("article %d", id)}
	}
	return out
}

func ids(as []types.Article) []int64 {
	out := make([]int64, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestFill(t *testing.T) {
	tests := []struct {
		name      string
		preferred []int64
		articles  []types.Article
		slotCount int
		want      []int64
	}{
		{
			name:      "no preferences takes the first four in order",
			articles:  articles(1, 2, 3, 4, 5),
			slotCount: 4,
			want:      []int64{1, 2, 3, 4},
		},
		{
			name:      "single preference in slot zero",
			preferred: []int64{3},
			articles:  articles(1, 2, 3, 4, 5),
			slotCount: 4,
			want:      []int64{3, 1, 2, 4},
		},
		{
			name:      "preferences keep their slot positions",
			preferred: []int64{0, 5, 0, 2},
			articles:  articles(1, 2, 3, 4, 5),
			slotCount: 4,
			want:      []int64{1, 5, 3, 2},
		},
		{
			name:      "unknown ids fall through to fillers",
			preferred: []int64{99, 4},
			articles:  articles(1, 2, 3, 4),
			slotCount: 4,
			want:      []int64{1, 4, 2, 3},
		},
		{
			name:      "duplicate preference resolves once",
			preferred: []int64{2, 2, 2, 2},
			articles:  articles(1, 2, 3, 4),
			slotCount: 4,
			want:      []int64{2, 1, 3, 4},
		},
		{
			name:      "preferences beyond slot count are ignored",
			preferred: []int64{1, 2, 3, 4, 5},
			articles:  articles(1, 2, 3, 4, 5),
			slotCount: 4,
			want:      []int64{1, 2, 3, 4},
		},
		{
			name:      "exhausted queue repeats the first article",
			preferred: []int64{2},
			articles:  articles(1, 2),
			slotCount: 4,
			want:      []int64{2, 1, 1, 1},
		},
		{
			name:      "exhausted queue repeats first article even when it was preferred",
			preferred: []int64{1, 2},
			articles:  articles(1, 2),
			slotCount: 4,
			want:      []int64{1, 2, 1, 1},
		},
		{
			name:      "empty collection yields placeholders",
			preferred: []int64{1, 2},
			slotCount: 4,
			want:      []int64{0, 0, 0, 0},
		},
		{
			name:      "custom slot count",
			articles:  articles(7, 8, 9),
			slotCount: 2,
			want:      []int64{7, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fill(tt.preferred, tt.articles, tt.slotCount)
			require.NoError(t, err)
			require.Len(t, got, tt.slotCount)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFillInvalidSlotCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		got, err := Fill(nil, nil, n)
		assert.ErrorIs(t, err, ErrInvalidSlotCount)
		assert.Nil(t, got)

		_, err = Fill([]int64{1}, articles(1), n)
		assert.ErrorIs(t, err, ErrInvalidSlotCount)
	}
}

func TestFillDistinctWhenEnoughArticles(t *testing.T) {
	all := articles(10, 20, 30, 40, 50, 60)
	for _, a := range all {
		got, err := Fill([]int64{a.ID}, all, DefaultSlotCount)
		require.NoError(t, err)
		require.Len(t, got, DefaultSlotCount)
		assert.Equal(t, a, got[0])

		seen := map[int64]bool{}
		for _, g := range got {
			assert.False(t, seen[g.ID], "article %d repeated", g.ID)
			seen[g.ID] = true
			assert.Contains(t, all, g)
		}
	}
}

func TestFillPlaceholder(t *testing.T) {
	got, err := Fill(nil, nil, DefaultSlotCount)
	require.NoError(t, err)
	for _, a := range got {
		assert.Equal(t, Placeholder(), a)
		assert.Equal(t, "No Article", a.Title)
	}
}

func TestFillDoesNotMutateInputs(t *testing.T) {
	preferred := []int64{3, 0, 3}
	all := articles(1, 2, 3)
	_, err := Fill(preferred, all, DefaultSlotCount)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 0, 3}, preferred)
	assert.Equal(t, articles(1, 2, 3), all)
}
