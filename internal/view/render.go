// Package view renders training pages as markdown documents.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

// Template names accepted by Render.
const (
	TemplateJournal   = "journal"
	TemplateTechnique = "technique"
)

// Journal is a set of pages to render, newest first as listed.
type Journal struct {
	Title      string
	Pages      []*trainlog.PageWithTags
	RenderedAt time.Time
}

// Render renders j using a named template. Unknown names fall back to the
// journal template.
func Render(j *Journal, templateName string) string {
	switch templateName {
	case TemplateTechnique:
		return renderTechniqueTemplate(j)
	default:
		return renderJournalTemplate(j)
	}
}

// renderJournalTemplate renders one section per training day.
func renderJournalTemplate(j *Journal) string {
	var b strings.Builder
	writeHeader(&b, j)

	var day string
	for _, p := range j.Pages {
		if d := p.Page.CreatedAt.Format("2006-01-02"); d != day {
			day = d
			fmt.Fprintf(&b, "## %s\n\n", day)
		}
		writePage(&b, p)
	}
	return b.String()
}

// renderTechniqueTemplate groups pages under each technique tag. A page with
// several techniques appears under each; pages without one are listed last.
func renderTechniqueTemplate(j *Journal) string {
	var b strings.Builder
	writeHeader(&b, j)

	byTechnique := make(map[string][]*trainlog.PageWithTags)
	var order []string
	var untagged []*trainlog.PageWithTags
	for _, p := range j.Pages {
		seen := make(map[string]bool)
		for _, t := range p.Tags {
			if t.Category != db.CategoryTechnique || seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			if _, ok := byTechnique[t.Name]; !ok {
				order = append(order, t.Name)
			}
			byTechnique[t.Name] = append(byTechnique[t.Name], p)
		}
		if len(seen) == 0 {
			untagged = append(untagged, p)
		}
	}

	for _, name := range order {
		pages := byTechnique[name]
		fmt.Fprintf(&b, "## %s (%d)\n\n", name, len(pages))
		for _, p := range pages {
			writePage(&b, p)
		}
	}
	if len(untagged) > 0 {
		fmt.Fprintf(&b, "## No technique (%d)\n\n", len(untagged))
		for _, p := range untagged {
			writePage(&b, p)
		}
	}
	return b.String()
}

func writeHeader(b *strings.Builder, j *Journal) {
	title := j.Title
	if title == "" {
		title = "Training Journal"
	}
	fmt.Fprintf(b, "# %s\n\n", title)
	fmt.Fprintf(b, "_%d pages, rendered %s_\n\n", len(j.Pages), j.RenderedAt.UTC().Format("2006-01-02 15:04 MST"))
}

func writePage(b *strings.Builder, p *trainlog.PageWithTags) {
	shortID := p.Page.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	fmt.Fprintf(b, "### %s `%s`\n\n", p.Page.Title, shortID)
	b.WriteString(p.Page.Content)
	b.WriteString("\n\n")
	if p.Page.Comment != nil && *p.Page.Comment != "" {
		fmt.Fprintf(b, "> %s\n\n", strings.ReplaceAll(*p.Page.Comment, "\n", "\n> "))
	}
	if line := tagLine(p.Tags); line != "" {
		fmt.Fprintf(b, "%s\n\n", line)
	}
}

func tagLine(tags []*db.UserTag) string {
	var parts []string
	for _, f := range []struct {
		label    string
		category db.Category
	}{
		{"Tori", db.CategoryActing},
		{"Uke", db.CategoryReceiving},
		{"Waza", db.CategoryTechnique},
	} {
		var names []string
		for _, t := range tags {
			if t.Category == f.category {
				names = append(names, t.Name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, fmt.Sprintf("**%s:** %s", f.label, strings.Join(names, ", ")))
		}
	}
	return strings.Join(parts, " · ")
}
