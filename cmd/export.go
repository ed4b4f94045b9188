package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/query"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/view"
)

const exportBatch = 100

var (
	exportTemplate string
	exportTitle    string
	exportOut      string
	exportHTML     bool
)

var exportCmd = &cobra.Command{
	Use:   "export [filter]",
	Short: "Export training pages as a markdown or HTML document",
	Example: `  aikinote export --out journal.md
  aikinote export 'tag:一教' --template technique --html -o ikkyo.html`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTemplate, "template", view.TemplateJournal, "Template: journal, technique")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "Document title")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Render HTML instead of markdown")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	q := trainlog.PagesQuery{UserID: cfg.User, Limit: exportBatch}
	if len(args) > 0 {
		filter, err := query.Parse(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		if q, err = filter.Apply(q); err != nil {
			return err
		}
	}

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	var pages []*trainlog.PageWithTags
	for {
		batch, err := svc.GetTrainingPages(cmd.Context(), q)
		if err != nil {
			return err
		}
		pages = append(pages, batch...)
		if len(batch) < q.Limit {
			break
		}
		q.Offset += len(batch)
	}

	journal := &view.Journal{
		Title:      exportTitle,
		Pages:      pages,
		RenderedAt: time.Now(),
	}
	var doc string
	if exportHTML {
		if doc, err = view.RenderHTML(journal, exportTemplate); err != nil {
			return err
		}
	} else {
		doc = view.Render(journal, exportTemplate)
	}

	if exportOut == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}
	if err := os.WriteFile(exportOut, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d pages to %s\n", len(pages), exportOut)
	return nil
}
