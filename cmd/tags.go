package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List your tags by category",
	RunE:  runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	tags, err := svc.GetUserTags(cmd.Context(), cfg.User)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return printJSON(out, tags)
	}
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found.")
		return nil
	}
	for _, t := range tags {
		fmt.Fprintf(out, "%-5s %s\n", categoryLabel(t.Category), t.Name)
	}
	return nil
}
