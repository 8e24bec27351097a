package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var _ types.Table = (*lessonsTable)(nil)

const lessonColumns = "lesson_id, title, description, video_url, related_articles, locked, localized, created_at"

// lessonsTable implements the Table interface for *types.Lesson.
type lessonsTable struct {
	backend *Backend
}

func (lt *lessonsTable) Get(id string) (any, error) {
	lessonID, err := parseEntityID(id)
	if err != nil {
		return nil, err
	}

	lt.backend.mu.RLock()
	defer lt.backend.mu.RUnlock()
	if err := lt.backend.checkAttached(); err != nil {
		return nil, err
	}

	row := lt.backend.db.QueryRow("SELECT "+lessonColumns+" FROM lessons WHERE lesson_id = ?", lessonID)
	l, err := hydrateLesson(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting lesson %d: %w", lessonID, err)
	}
	return l, nil
}

// Set creates or updates a lesson, including its related-article references
// and lock state.
func (lt *lessonsTable) Set(id string, data any) (string, error) {
	l, ok := data.(*types.Lesson)
	if !ok || l == nil {
		return "", types.ErrInvalidData
	}

	lt.backend.mu.Lock()
	defer lt.backend.mu.Unlock()
	if err := lt.backend.checkAttached(); err != nil {
		return "", err
	}

	lessonID, err := resolveEntityID(lt.backend.db, "lessons", "lesson_id", id, l.ID)
	if err != nil {
		return "", err
	}
	l.ID = lessonID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if err := l.Validate(); err != nil {
		return "", err
	}

	related, err := marshalJSONColumn(l.RelatedArticles, len(l.RelatedArticles) == 0)
	if err != nil {
		return "", fmt.Errorf("encoding related articles: %w", err)
	}
	localized, err := marshalJSONColumn(l.Localized, len(l.Localized) == 0)
	if err != nil {
		return "", fmt.Errorf("encoding localized text: %w", err)
	}

	_, err = lt.backend.db.Exec(`
		INSERT INTO lessons (lesson_id, title, description, video_url, related_articles, locked, localized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lesson_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			video_url = excluded.video_url,
			related_articles = excluded.related_articles,
			locked = excluded.locked,
			localized = excluded.localized`,
		l.ID, l.Title, l.Description, l.VideoURL, related, l.Locked, localized, formatTime(l.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("upserting lesson: %w", err)
	}

	if err := lt.backend.persist("lessons"); err != nil {
		return "", err
	}
	return strconv.FormatInt(l.ID, 10), nil
}

func (lt *lessonsTable) Delete(id string) error {
	lessonID, err := parseEntityID(id)
	if err != nil {
		return err
	}

	lt.backend.mu.Lock()
	defer lt.backend.mu.Unlock()
	if err := lt.backend.checkAttached(); err != nil {
		return err
	}

	found, err := exists(lt.backend.db, "lessons", "lesson_id", lessonID)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := lt.backend.db.Exec("DELETE FROM lessons WHERE lesson_id = ?", lessonID); err != nil {
		return fmt.Errorf("deleting lesson: %w", err)
	}
	return lt.backend.persist("lessons")
}

// Fetch returns lessons ordered by ID. Supported filters: "locked" (bool)
// and "limit".
func (lt *lessonsTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT " + lessonColumns + " FROM lessons"
	var args []any

	if v, ok := filter["locked"]; ok {
		locked, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE locked = ?"
		args = append(args, locked)
	}
	query += " ORDER BY lesson_id"

	limit, err := limitClause(filter)
	if err != nil {
		return nil, err
	}
	query += limit

	lt.backend.mu.RLock()
	defer lt.backend.mu.RUnlock()
	if err := lt.backend.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := lt.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lessons: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		l, err := hydrateLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lesson: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

func hydrateLesson(row scanner) (*types.Lesson, error) {
	var l types.Lesson
	var description, videoURL, related, localized, createdAt sql.NullString
	var locked sql.NullBool
	if err := row.Scan(&l.ID, &l.Title, &description, &videoURL, &related, &locked, &localized, &createdAt); err != nil {
		return nil, err
	}
	l.Description = description.String
	l.VideoURL = videoURL.String
	l.Locked = locked.Bool
	if err := unmarshalJSONColumn(related, &l.RelatedArticles); err != nil {
		return nil, fmt.Errorf("parsing related_articles: %w", err)
	}
	if err := unmarshalJSONColumn(localized, &l.Localized); err != nil {
		return nil, fmt.Errorf("parsing localized: %w", err)
	}
	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &l, nil
}
