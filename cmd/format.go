package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

const dateLayout = "2006-01-02"

var categoryAliases = map[string]db.Category{
	"acting":    db.CategoryActing,
	"tori":      db.CategoryActing,
	"receiving": db.CategoryReceiving,
	"uke":       db.CategoryReceiving,
	"technique": db.CategoryTechnique,
	"waza":      db.CategoryTechnique,
}

// parseCategory accepts a category name or its facet alias (tori, uke, waza).
func parseCategory(s string) (db.Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown category %q (want tori, uke or waza)", s)
	}
	return c, nil
}

func categoryLabel(c db.Category) string {
	switch c {
	case db.CategoryActing:
		return "tori"
	case db.CategoryReceiving:
		return "uke"
	case db.CategoryTechnique:
		return "waza"
	default:
		return string(c)
	}
}

// groupTags is the inverse of TagsByCategory.Pairs.
func groupTags(tags []*db.UserTag) trainlog.TagsByCategory {
	var out trainlog.TagsByCategory
	for _, t := range tags {
		switch t.Category {
		case db.CategoryActing:
			out.Tori = append(out.Tori, t.Name)
		case db.CategoryReceiving:
			out.Uke = append(out.Uke, t.Name)
		case db.CategoryTechnique:
			out.Waza = append(out.Waza, t.Name)
		}
	}
	return out
}

func tagSummary(tags []*db.UserTag) string {
	g := groupTags(tags)
	var parts []string
	for _, f := range []struct {
		label string
		names []string
	}{{"tori", g.Tori}, {"uke", g.Uke}, {"waza", g.Waza}} {
		if len(f.names) > 0 {
			parts = append(parts, f.label+": "+strings.Join(f.names, ", "))
		}
	}
	return strings.Join(parts, " | ")
}

func pageLine(p *trainlog.PageWithTags) string {
	line := fmt.Sprintf("[%s] %s %s", shortID(p.Page.ID), p.Page.CreatedAt.Format(dateLayout), p.Page.Title)
	if s := tagSummary(p.Tags); s != "" {
		line += " [" + s + "]"
	}
	return line
}

func writePage(w io.Writer, p *trainlog.PageWithTags) {
	fmt.Fprintf(w, "ID:      %s\n", p.Page.ID)
	fmt.Fprintf(w, "Title:   %s\n", p.Page.Title)
	fmt.Fprintf(w, "Created: %s\n", p.Page.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Updated: %s\n", p.Page.UpdatedAt.Format("2006-01-02 15:04"))
	if s := tagSummary(p.Tags); s != "" {
		fmt.Fprintf(w, "Tags:    %s\n", s)
	}
	fmt.Fprintf(w, "\n%s\n", p.Page.Content)
	if p.Page.Comment != nil {
		fmt.Fprintf(w, "\nComment: %s\n", *p.Page.Comment)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// pageEdit describes a partial change to a page. Nil fields keep the current
// value; an empty Comment removes it.
type pageEdit struct {
	Title     *string
	Content   *string
	Comment   *string
	Tori      *[]string
	Uke       *[]string
	Waza      *[]string
	ClearTags bool
}

// apply merges the edit over cur, producing a full replacement.
func (e pageEdit) apply(cur *trainlog.PageWithTags, userID string) (trainlog.PageInput, trainlog.TagsByCategory) {
	in := trainlog.PageInput{
		ID:      cur.Page.ID,
		UserID:  userID,
		Title:   cur.Page.Title,
		Content: cur.Page.Content,
		Comment: cur.Page.Comment,
	}
	if e.Title != nil {
		in.Title = *e.Title
	}
	if e.Content != nil {
		in.Content = *e.Content
	}
	if e.Comment != nil {
		in.Comment = nil
		if *e.Comment != "" {
			in.Comment = e.Comment
		}
	}

	tags := groupTags(cur.Tags)
	if e.ClearTags {
		tags = trainlog.TagsByCategory{}
	}
	if e.Tori != nil {
		tags.Tori = *e.Tori
	}
	if e.Uke != nil {
		tags.Uke = *e.Uke
	}
	if e.Waza != nil {
		tags.Waza = *e.Waza
	}
	return in, tags
}
