package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editTitle     string
	editContent   string
	editComment   string
	editTori      []string
	editUke       []string
	editWaza      []string
	editClearTags bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a training page",
	Long: `Update a training page. Only the given flags change; a tag flag replaces
that category's tags, and --clear-tags removes every tag before applying them.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
	editCmd.Flags().StringVar(&editComment, "comment", "", "New comment (empty removes it)")
	editCmd.Flags().StringSliceVar(&editTori, "tori", nil, "Acting-role tags")
	editCmd.Flags().StringSliceVar(&editUke, "uke", nil, "Receiving-role tags")
	editCmd.Flags().StringSliceVar(&editWaza, "waza", nil, "Technique tags")
	editCmd.Flags().BoolVar(&editClearTags, "clear-tags", false, "Remove all tags first")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var e pageEdit
	if flags.Changed("title") {
		e.Title = &editTitle
	}
	if flags.Changed("content") {
		e.Content = &editContent
	}
	if flags.Changed("comment") {
		e.Comment = &editComment
	}
	if flags.Changed("tori") {
		e.Tori = &editTori
	}
	if flags.Changed("uke") {
		e.Uke = &editUke
	}
	if flags.Changed("waza") {
		e.Waza = &editWaza
	}
	e.ClearTags = editClearTags

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	cur, err := svc.GetTrainingPageByID(cmd.Context(), args[0], cfg.User)
	if err != nil {
		return err
	}

	in, tags := e.apply(cur, cfg.User)
	page, err := svc.UpdateTrainingPage(cmd.Context(), in, tags)
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(cmd.OutOrStdout(), page)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s\n", page.Page.ID)
	return nil
}
