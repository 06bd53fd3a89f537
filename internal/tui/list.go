package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/engdigest/internal/store"
)

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(r store.Record, selected bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	marker := "  "
	style := itemUnreadStyle
	if r.IsRead {
		style = itemReadStyle
	}
	if selected {
		marker = "> "
		style = itemSelectedStyle
	}
	title := style.Render(marker + truncateStr(r.Title, width-4))

	meta := "  " + itemSourceStyle.Render(r.Source) + " " + itemTimeStyle.Render("· "+relativeTime(r.Published, now))
	if r.IsFavorite {
		meta += " " + favoriteStyle.Render("★")
	}
	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// visibleRange returns the [start, end) window of items that keeps cursor on
// screen when visible items fit.
func visibleRange(n, cursor, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
		start = max(0, end-visible)
	}
	return start, end
}

func renderList(records []store.Record, cursor, height, width int, now time.Time) string {
	if len(records) == 0 {
		return centered("No articles found", width, height)
	}

	// two lines per item plus a blank line
	start, end := visibleRange(len(records), cursor, height/3)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(records[i], i == cursor, width, now))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func centered(s string, width, height int) string {
	pad := max(0, (width-len([]rune(s)))/2)
	return strings.Repeat("\n", max(0, height/3)) + strings.Repeat(" ", pad) + s
}
