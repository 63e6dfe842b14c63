package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/evanschultz/ticklist/internal/domain"
)

// markdownRenderer caches one glamour renderer per wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// taskDetailsMarkdown describes one row for the details pane.
func taskDetailsMarkdown(row domain.ViewTask) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", row.Name)
	if desc := strings.TrimSpace(row.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	state := "open"
	if row.IsCompleted {
		state = "done"
	}
	fmt.Fprintf(&b, "- **id:** %d\n", row.ID)
	fmt.Fprintf(&b, "- **state:** %s\n", state)
	fmt.Fprintf(&b, "- **created:** %s\n", formatStamp(row.CreatedAt))
	if !row.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- **updated:** %s\n", formatStamp(row.UpdatedAt))
	}
	if row.IsEditing && (row.Name != row.PreviousName || row.Description != row.PreviousDescription) {
		fmt.Fprintf(&b, "- **unsaved:** was `%s` / `%s`\n", row.PreviousName, row.PreviousDescription)
	}
	return b.String()
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
