package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var _ types.Table = (*articlesTable)(nil)

const articleColumns = "article_id, title, description, localized, created_at"

// articlesTable implements the Table interface for *types.Article.
type articlesTable struct {
	backend *Backend
}

// Get retrieves an article by its integer ID.
func (at *articlesTable) Get(id string) (any, error) {
	articleID, err := parseEntityID(id)
	if err != nil {
		return nil, err
	}

	at.backend.mu.RLock()
	defer at.backend.mu.RUnlock()
	if err := at.backend.checkAttached(); err != nil {
		return nil, err
	}

	row := at.backend.db.QueryRow("SELECT "+articleColumns+" FROM articles WHERE article_id = ?", articleID)
	a, err := hydrateArticle(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %d: %w", articleID, err)
	}
	return a, nil
}

// Set creates or updates an article. The stored created_at of an existing
// article is kept.
func (at *articlesTable) Set(id string, data any) (string, error) {
	a, ok := data.(*types.Article)
	if !ok || a == nil {
		return "", types.ErrInvalidData
	}

	at.backend.mu.Lock()
	defer at.backend.mu.Unlock()
	if err := at.backend.checkAttached(); err != nil {
		return "", err
	}

	articleID, err := resolveEntityID(at.backend.db, "articles", "article_id", id, a.ID)
	if err != nil {
		return "", err
	}
	a.ID = articleID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := a.Validate(); err != nil {
		return "", err
	}

	localized, err := marshalJSONColumn(a.Localized, len(a.Localized) == 0)
	if err != nil {
		return "", fmt.Errorf("encoding localized text: %w", err)
	}

	_, err = at.backend.db.Exec(`
		INSERT INTO articles (article_id, title, description, localized, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(article_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			localized = excluded.localized`,
		a.ID, a.Title, a.Description, localized, formatTime(a.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("upserting article: %w", err)
	}

	if err := at.backend.persist("articles"); err != nil {
		return "", err
	}
	return strconv.FormatInt(a.ID, 10), nil
}

// Delete removes an article. Lessons that reference it keep the dangling id.
func (at *articlesTable) Delete(id string) error {
	articleID, err := parseEntityID(id)
	if err != nil {
		return err
	}

	at.backend.mu.Lock()
	defer at.backend.mu.Unlock()
	if err := at.backend.checkAttached(); err != nil {
		return err
	}

	found, err := exists(at.backend.db, "articles", "article_id", articleID)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := at.backend.db.Exec("DELETE FROM articles WHERE article_id = ?", articleID); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return at.backend.persist("articles")
}

// Fetch returns articles ordered by ID. Supported filters: "ids" (list of
// ids) and "limit".
func (at *articlesTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT " + articleColumns + " FROM articles"
	var args []any

	if v, ok := filter["ids"]; ok {
		ids, ok := toInt64s(v)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if len(ids) == 0 {
			return []any{}, nil
		}
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += " WHERE article_id IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " ORDER BY article_id"

	limit, err := limitClause(filter)
	if err != nil {
		return nil, err
	}
	query += limit

	at.backend.mu.RLock()
	defer at.backend.mu.RUnlock()
	if err := at.backend.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := at.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		a, err := hydrateArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func hydrateArticle(row scanner) (*types.Article, error) {
	var a types.Article
	var description, localized, createdAt sql.NullString
	if err := row.Scan(&a.ID, &a.Title, &description, &localized, &createdAt); err != nil {
		return nil, err
	}
	a.Description = description.String
	if err := unmarshalJSONColumn(localized, &a.Localized); err != nil {
		return nil, fmt.Errorf("parsing localized: %w", err)
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}
