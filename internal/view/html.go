package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Page content is plain text typed line by line, so newlines are kept.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// RenderHTML renders j as a standalone HTML document. Raw HTML in page text
// is not passed through.
func RenderHTML(j *Journal, templateName string) (string, error) {
	var body strings.Builder
	if err := mdRenderer.Convert([]byte(Render(j, templateName)), &body); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	title := j.Title
	if title == "" {
		title = "Training Journal"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body.String())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
