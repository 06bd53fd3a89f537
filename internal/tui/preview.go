package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/matheuskafuri/engdigest/internal/store"
)

func renderPreview(r *store.Record, width, height, scroll int) string {
	if r == nil {
		return centered("Select an article", width, height)
	}

	contentWidth := max(10, width-2)

	title := previewTitleStyle.Render(wordwrap.String(r.Title, contentWidth))
	meta := r.Source
	if !r.Published.IsZero() {
		meta += " · " + r.Published.Local().Format("Jan 2, 2006 15:04")
	}
	if r.Author != "" {
		meta += " · " + r.Author
	}
	if r.IsFavorite {
		meta += " " + favoriteStyle.Render("★")
	}

	summary := r.Summary
	if summary == "" {
		summary = "(No summary available)"
	}
	body := previewBodyStyle.Render(wordwrap.String(summary, contentWidth))

	parts := []string{title, previewMetaStyle.Render(meta), "", body}
	if len(r.Keywords) > 0 {
		tags := make([]string, len(r.Keywords))
		for i, k := range r.Keywords {
			tags[i] = keywordStyle.Render(k)
		}
		parts = append(parts, "", wordwrap.String(strings.Join(tags, " "), contentWidth))
	}
	parts = append(parts, "", previewLinkStyle.Render(wordwrap.String("Read more: "+r.URL, contentWidth)))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
