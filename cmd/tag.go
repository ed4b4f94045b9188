package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

var tagCheck bool

var tagCmd = &cobra.Command{
	Use:   "tag <tori|uke|waza> <name>",
	Short: "Create a tag without a page",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTag,
}

func init() {
	tagCmd.Flags().BoolVar(&tagCheck, "check", false, "Only report whether the tag exists")
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	category, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	if tagCheck {
		existing, err := svc.CheckDuplicateTag(cmd.Context(), cfg.User, name, category)
		if err != nil {
			return err
		}
		if format == "json" {
			return printJSON(out, map[string]any{"exists": existing != nil, "tag": existing})
		}
		if existing != nil {
			fmt.Fprintf(out, "Exists: %s/%s (%s)\n", categoryLabel(category), existing.Name, shortID(existing.ID))
		} else {
			fmt.Fprintf(out, "Not found: %s/%s\n", categoryLabel(category), name)
		}
		return nil
	}

	tag, err := svc.CreateUserTag(cmd.Context(), cfg.User, name, category)
	if errors.Is(err, trainlog.ErrConflict) {
		return fmt.Errorf("tag %s/%s already exists", categoryLabel(category), strings.TrimSpace(name))
	}
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(out, tag)
	}
	fmt.Fprintf(out, "Created: %s/%s (%s)\n", categoryLabel(tag.Category), tag.Name, shortID(tag.ID))
	return nil
}
