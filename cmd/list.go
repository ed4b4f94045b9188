package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/query"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

var (
	listLimit  int
	listOffset int
	listQuery  string
	listTags   []string
	listDate   string
)

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List training pages, newest first",
	Long: `List training pages, newest first.

--tag may be given several times; only pages carrying every named tag are
listed. --query matches the title, case-insensitively. --date (YYYY-MM-DD)
keeps pages created on that UTC day.

The same filters can be written as an expression:

  aikinote list 'tag:立技 AND tag:呼吸法 title:kokyu date:2024-05-01'`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Max pages to return (default from config)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Pages to skip")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Title substring")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Tag name (repeatable; all must match)")
	listCmd.Flags().StringVar(&listDate, "date", "", "Creation day, YYYY-MM-DD")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	limit := listLimit
	if limit == 0 {
		limit = cfg.PageLimit
	}

	q := trainlog.PagesQuery{
		UserID: cfg.User,
		Limit:  limit,
		Offset: listOffset,
		Query:  listQuery,
		Tags:   strings.Join(listTags, ","),
		Date:   listDate,
	}
	if len(args) > 0 {
		filter, err := query.Parse(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		if q, err = filter.Apply(q); err != nil {
			return err
		}
	}

	pages, err := svc.GetTrainingPages(cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return printJSON(out, pages)
	}
	if len(pages) == 0 {
		fmt.Fprintln(out, "No training pages found.")
		return nil
	}
	for _, p := range pages {
		fmt.Fprintln(out, pageLine(p))
	}
	return nil
}
