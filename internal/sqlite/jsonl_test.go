// Tests for JSONL persistence in the SQLite backend.
package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/academy/pkg/types"
)

func TestJSONLFilesCreatedOnAttach(t *testing.T) {
	dir := t.TempDir()
	b := attachBackend(t, dir, "")
	defer b.Detach()

	for _, name := range []string{articlesJSONL, lessonsJSONL, productsJSONL, cartsJSONL, cartLinesJSONL} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Zero(t, info.Size(), "%s should start empty", name)
	}
}

func TestJSONLExistingFilesKept(t *testing.T) {
	dir := t.TempDir()
	line := `{"article_id":5,"title":"Kept","created_at":"2025-01-15T10:30:00Z"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, articlesJSONL), []byte(line), 0o644))

	b := attachBackend(t, dir, "")
	defer b.Detach()

	data, err := os.ReadFile(filepath.Join(dir, articlesJSONL))
	require.NoError(t, err)
	assert.Equal(t, line, string(data))
}

func TestLessonPersistedToJSONL(t *testing.T) {
	dir := t.TempDir()
	b := attachBackend(t, dir, "")
	defer b.Detach()

	_, err := mustTable(t, b, types.TableLessons).Set("", &types.Lesson{
		Title:           "Stretching",
		RelatedArticles: []int64{2, 0, 9},
		Locked:          true,
	})
	require.NoError(t, err)

	records, err := readJSONL(filepath.Join(dir, lessonsJSONL))
	require.NoError(t, err)
	require.Len(t, records, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(records[0], &rec))
	assert.Equal(t, float64(1), rec["lesson_id"])
	assert.Equal(t, "Stretching", rec["title"])
	assert.Equal(t, []any{float64(2), float64(0), float64(9)}, rec["related_articles"],
		"JSON columns are written as nested values")
	assert.Equal(t, float64(1), rec["locked"])
}

func TestProductPricePersistedAsString(t *testing.T) {
	dir := t.TempDir()
	b := attachBackend(t, dir, "")
	defer b.Detach()

	_, err := mustTable(t, b, types.TableProducts).Set("", &types.Product{
		Name:  "Block",
		Price: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, productsJSONL))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":"0.1"`)
}

func TestCartPersistedToBothFiles(t *testing.T) {
	dir := t.TempDir()
	b := attachBackend(t, dir, "")
	defer b.Detach()

	carts := mustTable(t, b, types.TableCarts)
	_, err := carts.Set("default", &types.Cart{Lines: []types.CartLine{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	}})
	require.NoError(t, err)

	cartRecords, err := readJSONL(filepath.Join(dir, cartsJSONL))
	require.NoError(t, err)
	assert.Len(t, cartRecords, 1)

	lineRecords, err := readJSONL(filepath.Join(dir, cartLinesJSONL))
	require.NoError(t, err)
	require.Len(t, lineRecords, 2)
	assert.Contains(t, string(lineRecords[0]), `"product_id":3`)
	assert.Contains(t, string(lineRecords[1]), `"position":1`)

	require.NoError(t, carts.Delete("default"))
	lineRecords, err = readJSONL(filepath.Join(dir, cartLinesJSONL))
	require.NoError(t, err)
	assert.Empty(t, lineRecords)
}

func TestDeletePersistedToJSONL(t *testing.T) {
	dir := t.TempDir()
	b := attachBackend(t, dir, "")
	defer b.Detach()

	tbl := mustTable(t, b, types.TableArticles)
	id, err := tbl.Set("", &types.Article{Title: "Temporary"})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(id))

	data, err := os.ReadFile(filepath.Join(dir, articlesJSONL))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")

	records := []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"a":2}`),
	}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := "{\"ok\":1}\n\nnot json\n{\"ok\":2}\n{\"truncated\":\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"ok":1}`, string(records[0]))
	assert.JSONEq(t, `{"ok":2}`, string(records[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestJSONValue(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		isJSON bool
		want   any
	}{
		{"nil passes through", nil, false, nil},
		{"int passes through", int64(4), false, int64(4)},
		{"bytes become string", []byte("x"), false, "x"},
		{"json column becomes raw", `{"ka":{}}`, true, json.RawMessage(`{"ka":{}}`)},
		{"invalid json column stays string", `{oops`, true, `{oops`},
		{"plain column keeps json text", `[1]`, false, `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonValue(tt.in, tt.isJSON))
		})
	}
}
