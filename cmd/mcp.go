package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/query"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for Claude Desktop and other MCP clients",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := server.NewMCPServer(
		"aikinote",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	registerTools(s)

	return server.ServeStdio(s)
}

func registerTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("aikinote_create_page",
		mcp.WithDescription("Record a training page with tori, uke and waza tags. Missing tags are created."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title (max 100 characters)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Page content (max 2000 characters)"),
		),
		mcp.WithString("comment",
			mcp.Description("Optional comment (max 1000 characters)"),
		),
		mcp.WithString("tori",
			mcp.Description("Comma-separated acting-role tags"),
		),
		mcp.WithString("uke",
			mcp.Description("Comma-separated receiving-role tags"),
		),
		mcp.WithString("waza",
			mcp.Description("Comma-separated technique tags"),
		),
	), handleCreatePage)

	s.AddTool(mcp.NewTool("aikinote_list_pages",
		mcp.WithDescription("List training pages, newest first. Tag filter keeps pages carrying every named tag."),
		mcp.WithString("filter",
			mcp.Description("Filter expression, e.g. 'tag:立技 AND tag:呼吸法 title:\"kokyu ho\" date:2024-05-01'"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tag names, all must match"),
		),
		mcp.WithString("query",
			mcp.Description("Case-insensitive title substring"),
		),
		mcp.WithString("date",
			mcp.Description("Creation day, YYYY-MM-DD (UTC)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results to return (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Results to skip"),
		),
	), handleListPages)

	s.AddTool(mcp.NewTool("aikinote_show_page",
		mcp.WithDescription("Show a training page with its tags"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Page ID"),
		),
	), handleShowPage)

	s.AddTool(mcp.NewTool("aikinote_update_page",
		mcp.WithDescription("Update a training page. Omitted fields keep their value; a given tag field replaces that category's tags."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Page ID"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("content",
			mcp.Description("New content"),
		),
		mcp.WithString("comment",
			mcp.Description("New comment; empty string removes it"),
		),
		mcp.WithString("tori",
			mcp.Description("Comma-separated acting-role tags"),
		),
		mcp.WithString("uke",
			mcp.Description("Comma-separated receiving-role tags"),
		),
		mcp.WithString("waza",
			mcp.Description("Comma-separated technique tags"),
		),
	), handleUpdatePage)

	s.AddTool(mcp.NewTool("aikinote_tags",
		mcp.WithDescription("List all tags by category"),
	), handleTags)

	s.AddTool(mcp.NewTool("aikinote_create_tag",
		mcp.WithDescription("Create a tag without recording a page"),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Tag category"),
			mcp.Enum("tori", "uke", "waza"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tag name"),
		),
	), handleCreateTag)
}

func handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	in := trainlog.PageInput{UserID: cfg.User, Title: title, Content: content}
	if c := req.GetString("comment", ""); c != "" {
		in.Comment = &c
	}

	page, err := svc.CreatePage(ctx, in, trainlog.TagsByCategory{
		Tori: splitAndTrim(req.GetString("tori", "")),
		Uke:  splitAndTrim(req.GetString("uke", "")),
		Waza: splitAndTrim(req.GetString("waza", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create page: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Recorded page %s (%d tags)", page.Page.ID, len(page.Tags))), nil
}

func handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	q := trainlog.PagesQuery{
		UserID: cfg.User,
		Limit:  req.GetInt("limit", cfg.PageLimit),
		Offset: req.GetInt("offset", 0),
		Query:  req.GetString("query", ""),
		Tags:   req.GetString("tags", ""),
		Date:   req.GetString("date", ""),
	}
	if expr := req.GetString("filter", ""); expr != "" {
		filter, err := query.Parse(expr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid filter: %v", err)), nil
		}
		if q, err = filter.Apply(q); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	pages, err := svc.GetTrainingPages(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
	}

	if len(pages) == 0 {
		return mcp.NewToolResultText("No training pages found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d page(s):\n\n", len(pages))
	for _, p := range pages {
		fmt.Fprintf(&b, "- **%s** %s: %s", p.Page.ID, p.Page.CreatedAt.Format(dateLayout), p.Page.Title)
		if s := tagSummary(p.Tags); s != "" {
			fmt.Fprintf(&b, " [%s]", s)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleShowPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	page, err := svc.GetTrainingPageByID(ctx, id, cfg.User)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	writePage(&b, page)
	return mcp.NewToolResultText(b.String()), nil
}

func handleUpdatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	var e pageEdit
	optString := func(key string) *string {
		if _, ok := args[key]; !ok {
			return nil
		}
		v := req.GetString(key, "")
		return &v
	}
	optTags := func(key string) *[]string {
		if _, ok := args[key]; !ok {
			return nil
		}
		v := splitAndTrim(req.GetString(key, ""))
		return &v
	}
	e.Title = optString("title")
	e.Content = optString("content")
	e.Comment = optString("comment")
	e.Tori = optTags("tori")
	e.Uke = optTags("uke")
	e.Waza = optTags("waza")

	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	cur, err := svc.GetTrainingPageByID(ctx, id, cfg.User)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in, tags := e.apply(cur, cfg.User)
	page, err := svc.UpdateTrainingPage(ctx, in, tags)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update page: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated page %s (%d tags)", page.Page.ID, len(page.Tags))), nil
}

func handleTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	tags, err := svc.GetUserTags(ctx, cfg.User)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tags: %v", err)), nil
	}

	if len(tags) == 0 {
		return mcp.NewToolResultText("No tags found."), nil
	}

	g := groupTags(tags)
	var b strings.Builder
	fmt.Fprintf(&b, "tori: %s\n", strings.Join(g.Tori, ", "))
	fmt.Fprintf(&b, "uke: %s\n", strings.Join(g.Uke, ", "))
	fmt.Fprintf(&b, "waza: %s\n", strings.Join(g.Waza, ", "))
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawCategory, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := parseCategory(rawCategory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, closeFn, err := openService()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer closeFn()

	tag, err := svc.CreateUserTag(ctx, cfg.User, name, category)
	if errors.Is(err, trainlog.ErrConflict) {
		return mcp.NewToolResultText(fmt.Sprintf("Tag %s/%s already exists", categoryLabel(category), strings.TrimSpace(name))), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create tag: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created tag %s/%s (%s)", categoryLabel(tag.Category), tag.Name, tag.ID)), nil
}

// helpers

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
