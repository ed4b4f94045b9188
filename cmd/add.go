package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a training page",
	Example: `  aikinote add "Saturday keiko" --content "Worked on ikkyo omote" --tori 相半身 --waza 一教
  echo "notes" | aikinote add "Weapons class" --stdin --waza 木剣`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addContent string
	addComment string
	addStdin   bool
	addTori    []string
	addUke     []string
	addWaza    []string
)

func init() {
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Page content")
	addCmd.Flags().StringVar(&addComment, "comment", "", "Optional comment")
	addCmd.Flags().BoolVar(&addStdin, "stdin", false, "Read content from stdin")
	addCmd.Flags().StringSliceVar(&addTori, "tori", nil, "Acting-role tags (repeatable or comma-separated)")
	addCmd.Flags().StringSliceVar(&addUke, "uke", nil, "Receiving-role tags (repeatable or comma-separated)")
	addCmd.Flags().StringSliceVar(&addWaza, "waza", nil, "Technique tags (repeatable or comma-separated)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	content := addContent
	if addStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = strings.TrimSpace(string(data))
	}
	if content == "" {
		return fmt.Errorf("content is required (use --content or --stdin)")
	}

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	in := trainlog.PageInput{
		UserID:  cfg.User,
		Title:   strings.Join(args, " "),
		Content: content,
	}
	if addComment != "" {
		in.Comment = &addComment
	}

	page, err := svc.CreatePage(cmd.Context(), in, trainlog.TagsByCategory{
		Tori: addTori,
		Uke:  addUke,
		Waza: addWaza,
	})
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(cmd.OutOrStdout(), page)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", page.Page.ID)
	return nil
}
