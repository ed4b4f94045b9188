package db

import (
	"context"
	"fmt"
	"strings"
)

// PageTag is a junction row linking a training page to a user tag.
type PageTag struct {
	ID             string `json:"id"`
	TrainingPageID string `json:"training_page_id"`
	UserTagID      string `json:"user_tag_id"`
}

// PageTagFilter selects junction rows. A non-nil empty slice matches nothing.
type PageTagFilter struct {
	PageIDs []string
	TagIDs  []string
}

// PageTagRow is a tag together with the page it is attached to.
type PageTagRow struct {
	TrainingPageID string
	Tag            *UserTag
}

func (d *DB) InsertPageTags(ctx context.Context, links []PageTag) error {
	if len(links) == 0 {
		return nil
	}

	args := make([]any, 0, len(links)*3)
	values := make([]string, 0, len(links))
	for i := range links {
		if links[i].ID == "" {
			links[i].ID = NewID()
		}
		values = append(values, "(?, ?, ?)")
		args = append(args, links[i].ID, links[i].TrainingPageID, links[i].UserTagID)
	}

	_, err := d.exec(ctx, `INSERT INTO training_page_tags (id, training_page_id, user_tag_id) VALUES `+
		strings.Join(values, ", "), args...)
	if err != nil {
		return fmt.Errorf("failed to insert training page tags: %w", err)
	}
	return nil
}

func (d *DB) SelectPageTags(ctx context.Context, filter PageTagFilter) ([]PageTag, error) {
	if (filter.PageIDs != nil && len(filter.PageIDs) == 0) || (filter.TagIDs != nil && len(filter.TagIDs) == 0) {
		return nil, nil
	}

	query := `SELECT id, training_page_id, user_tag_id FROM training_page_tags`
	var conditions []string
	var args []any

	if len(filter.PageIDs) > 0 {
		conditions = append(conditions, "training_page_id IN ("+placeholders(len(filter.PageIDs))+")")
		args = append(args, stringArgs(filter.PageIDs)...)
	}
	if len(filter.TagIDs) > 0 {
		conditions = append(conditions, "user_tag_id IN ("+placeholders(len(filter.TagIDs))+")")
		args = append(args, stringArgs(filter.TagIDs)...)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY training_page_id, id"

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select training page tags: %w", err)
	}
	defer rows.Close()

	var links []PageTag
	for rows.Next() {
		var link PageTag
		if err := rows.Scan(&link.ID, &link.TrainingPageID, &link.UserTagID); err != nil {
			return nil, fmt.Errorf("failed to scan training page tag: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select training page tags: %w", err)
	}
	return links, nil
}

func (d *DB) SelectTagsForPages(ctx context.Context, pageIDs []string) ([]PageTagRow, error) {
	if len(pageIDs) == 0 {
		return nil, nil
	}

	rows, err := d.query(ctx, `SELECT pt.training_page_id, t.id, t.user_id, t.name, t.category, t.created_at
		FROM training_page_tags pt
		JOIN user_tags t ON t.id = pt.user_tag_id
		WHERE pt.training_page_id IN (`+placeholders(len(pageIDs))+`)
		ORDER BY pt.training_page_id, t.category, t.name`, stringArgs(pageIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags for pages: %w", err)
	}
	defer rows.Close()

	var result []PageTagRow
	for rows.Next() {
		var pageID, category, createdAt string
		tag := &UserTag{}
		if err := rows.Scan(&pageID, &tag.ID, &tag.UserID, &tag.Name, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag for page: %w", err)
		}
		tag.Category = Category(category)
		tag.CreatedAt = parseTime(createdAt)
		result = append(result, PageTagRow{TrainingPageID: pageID, Tag: tag})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select tags for pages: %w", err)
	}
	return result, nil
}

func (d *DB) DeletePageTags(ctx context.Context, pageID string) error {
	if _, err := d.exec(ctx, "DELETE FROM training_page_tags WHERE training_page_id = ?", pageID); err != nil {
		return fmt.Errorf("failed to delete training page tags: %w", err)
	}
	return nil
}
