package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	hintsNormal = " / search  r read  f fav  u unread  * favs  a all  o open  ? help  q quit "
	hintsSearch = " esc cancel  enter search "
)

func renderStatusBar(count int, v view, source, query string, width int, searching bool) string {
	left := fmt.Sprintf(" %d articles · %s", count, v)
	if source != "" {
		left += " · " + source
	}
	if query != "" {
		left += fmt.Sprintf(" · %q", query)
	}

	right := hintsNormal
	if searching {
		right = hintsSearch
	}

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
