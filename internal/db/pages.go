package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type TrainingPage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PagePatch updates the mutable columns of the page matching ID and UserID.
type PagePatch struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Comment   *string
	UpdatedAt time.Time
}

// PageFilter selects training pages. Zero values mean "no constraint", except
// IDs: a non-nil empty slice matches nothing.
type PageFilter struct {
	UserID        string
	TitleContains string
	CreatedFrom   *time.Time // inclusive
	CreatedTo     *time.Time // inclusive
	IDs           []string
	Limit         int
	Offset        int
}

const pageColumns = "id, user_id, title, content, comment, created_at, updated_at"

func (d *DB) InsertPage(ctx context.Context, page *TrainingPage) error {
	if page.ID == "" {
		page.ID = NewID()
	}
	_, err := d.exec(ctx, `INSERT INTO training_pages (`+pageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.UserID, page.Title, page.Content, nullString(page.Comment),
		formatTime(page.CreatedAt), formatTime(page.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert training page: %w", err)
	}
	return nil
}

func (d *DB) GetPage(ctx context.Context, id string) (*TrainingPage, error) {
	page, err := scanPage(d.queryRow(ctx, `SELECT `+pageColumns+` FROM training_pages WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get training page: %w", err)
	}
	return page, nil
}

func (d *DB) UpdatePage(ctx context.Context, patch PagePatch) (*TrainingPage, error) {
	result, err := d.exec(ctx, `UPDATE training_pages SET title = ?, content = ?, comment = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		patch.Title, patch.Content, nullString(patch.Comment), formatTime(patch.UpdatedAt),
		patch.ID, patch.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update training page: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}
	return d.GetPage(ctx, patch.ID)
}

func (d *DB) SelectPages(ctx context.Context, filter PageFilter) ([]*TrainingPage, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + pageColumns + ` FROM training_pages`
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.TitleContains != "" {
		conditions = append(conditions, fmt.Sprintf(`title %s ? ESCAPE '\'`, d.dialect.likeOperator))
		args = append(args, "%"+escapeLike(filter.TitleContains)+"%")
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, formatTime(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, formatTime(*filter.CreatedTo))
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, "id IN ("+placeholders(len(filter.IDs))+")")
		args = append(args, stringArgs(filter.IDs)...)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded there.
		if d.dialect.positional {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		} else {
			query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
		}
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select training pages: %w", err)
	}
	defer rows.Close()

	var pages []*TrainingPage
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select training pages: %w", err)
	}
	return pages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*TrainingPage, error) {
	page := &TrainingPage{}
	var comment sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&page.ID, &page.UserID, &page.Title, &page.Content, &comment, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if comment.Valid {
		page.Comment = &comment.String
	}
	page.CreatedAt = parseTime(createdAt)
	page.UpdatedAt = parseTime(updatedAt)
	return page, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
