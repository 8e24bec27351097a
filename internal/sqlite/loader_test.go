// Unit tests for JSONL loading with forward compatibility.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/academy/pkg/types"
)

func openSchemaDB(t *testing.T, dir string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, createSchema(db))
	require.NoError(t, initJSONLFiles(dir))
	return db
}

func TestLoadJSONLUnknownFields(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		jsonl    string
		checkSQL string
		want     string
	}{
		{
			name:     "articles with unknown fields",
			file:     articlesJSONL,
			jsonl:    `{"article_id":1,"title":"Breath","created_at":"2025-01-15T10:30:00Z","reading_time":4}`,
			checkSQL: "SELECT title FROM articles WHERE article_id = 1",
			want:     "Breath",
		},
		{
			name:     "lessons with nested related articles",
			file:     lessonsJSONL,
			jsonl:    `{"lesson_id":2,"title":"Core","related_articles":[3,1],"locked":1,"difficulty":"hard"}`,
			checkSQL: "SELECT related_articles FROM lessons WHERE lesson_id = 2",
			want:     "[3,1]",
		},
		{
			name:     "products with numeric price",
			file:     productsJSONL,
			jsonl:    `{"product_id":3,"name":"Mat","price":"19.99","sku":"MAT-1"}`,
			checkSQL: "SELECT price FROM products WHERE product_id = 3",
			want:     "19.99",
		},
		{
			name:     "carts with unknown fields",
			file:     cartsJSONL,
			jsonl:    `{"cart_id":"default","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z","currency":"GEL"}`,
			checkSQL: "SELECT updated_at FROM carts WHERE cart_id = 'default'",
			want:     "2025-01-15T10:30:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			db := openSchemaDB(t, dir)
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.jsonl+"\n"), 0o644))

			require.NoError(t, loadAllJSONL(db, dir))

			var got string
			require.NoError(t, db.QueryRow(tt.checkSQL).Scan(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadJSONLSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	db := openSchemaDB(t, dir)

	articles := `{"article_id":1,"title":"Good"}
{"article_id":2}
garbage
{"article_id":1,"title":"Duplicate"}
{"article_id":3,"title":"Also good"}
`
	lines := `{"cart_id":"default","product_id":1,"quantity":0,"position":0}
{"cart_id":"default","product_id":2,"quantity":2,"position":1}
`
	carts := `{"cart_id":"default","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, articlesJSONL), []byte(articles), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cartsJSONL), []byte(carts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cartLinesJSONL), []byte(lines), 0o644))

	require.NoError(t, loadAllJSONL(db, dir))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n))
	assert.Equal(t, 2, n, "missing title and duplicate id are skipped")

	var title string
	require.NoError(t, db.QueryRow("SELECT title FROM articles WHERE article_id = 1").Scan(&title))
	assert.Equal(t, "Good", title, "first record wins")

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cart_lines").Scan(&n))
	assert.Equal(t, 1, n, "zero quantity line is skipped")
}

func TestLoadedRecordsHydrate(t *testing.T) {
	dir := t.TempDir()
	lessons := `{"lesson_id":4,"title":"Balance","video_url":"https://v.example.com/4","related_articles":[1,2,3,4],"locked":true,"localized":{"ka":{"title":"ბალანსი"}},"created_at":"2025-01-15T10:30:00Z"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, lessonsJSONL), []byte(lessons), 0o644))

	b := attachBackend(t, dir, "")
	defer b.Detach()

	got, err := mustTable(t, b, types.TableLessons).Get("4")
	require.NoError(t, err)
	l := got.(*types.Lesson)
	assert.Equal(t, []int64{1, 2, 3, 4}, l.RelatedArticles)
	assert.True(t, l.Locked)
	title, _ := l.Text("ka")
	assert.Equal(t, "ბალანსი", title)
	assert.Equal(t, 2025, l.CreatedAt.Year())
}

func TestMappingFor(t *testing.T) {
	m, ok := mappingFor("cart_lines")
	require.True(t, ok)
	assert.Equal(t, cartLinesJSONL, m.file)

	_, ok = mappingFor("orders")
	assert.False(t, ok)
}
