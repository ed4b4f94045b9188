package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Category is one of the three fixed tag facets.
type Category string

const (
	CategoryActing    Category = "acting"    // tori
	CategoryReceiving Category = "receiving" // uke
	CategoryTechnique Category = "technique" // waza
)

// Categories lists the facets in their canonical order.
var Categories = []Category{CategoryActing, CategoryReceiving, CategoryTechnique}

func (c Category) Valid() bool {
	switch c {
	case CategoryActing, CategoryReceiving, CategoryTechnique:
		return true
	}
	return false
}

type UserTag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TagFilter selects user tags of one user. Names and IDs are membership
// filters; a non-nil empty slice matches nothing.
type TagFilter struct {
	UserID   string
	Names    []string
	IDs      []string
	Category Category
}

const tagColumns = "id, user_id, name, category, created_at"

func (d *DB) InsertTag(ctx context.Context, tag *UserTag) (*UserTag, error) {
	if tag.ID == "" {
		tag.ID = NewID()
	}
	result, err := d.exec(ctx, `INSERT INTO user_tags (`+tagColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name, category) DO NOTHING`,
		tag.ID, tag.UserID, tag.Name, string(tag.Category), formatTime(tag.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user tag: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 1 {
		return tag, nil
	}

	// Lost a race with another writer; hand back the row that won.
	existing, err := d.FindTag(ctx, tag.UserID, tag.Name, tag.Category)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("failed to insert user tag %s/%s: row neither inserted nor found", tag.Category, tag.Name)
	}
	return existing, nil
}

func (d *DB) FindTag(ctx context.Context, userID, name string, category Category) (*UserTag, error) {
	tag, err := scanTag(d.queryRow(ctx,
		`SELECT `+tagColumns+` FROM user_tags WHERE user_id = ? AND name = ? AND category = ?`,
		userID, name, string(category)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user tag: %w", err)
	}
	return tag, nil
}

func (d *DB) SelectTags(ctx context.Context, filter TagFilter) ([]*UserTag, error) {
	if (filter.Names != nil && len(filter.Names) == 0) || (filter.IDs != nil && len(filter.IDs) == 0) {
		return nil, nil
	}

	query := `SELECT ` + tagColumns + ` FROM user_tags`
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(filter.Category))
	}
	if len(filter.Names) > 0 {
		conditions = append(conditions, "name IN ("+placeholders(len(filter.Names))+")")
		args = append(args, stringArgs(filter.Names)...)
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, "id IN ("+placeholders(len(filter.IDs))+")")
		args = append(args, stringArgs(filter.IDs)...)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY category, name"

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select user tags: %w", err)
	}
	defer rows.Close()

	var tags []*UserTag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select user tags: %w", err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*UserTag, error) {
	tag := &UserTag{}
	var category, createdAt string
	if err := row.Scan(&tag.ID, &tag.UserID, &tag.Name, &category, &createdAt); err != nil {
		return nil, err
	}
	tag.Category = Category(category)
	tag.CreatedAt = parseTime(createdAt)
	return tag, nil
}
