package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type view int

const (
	viewAll view = iota
	viewUnread
	viewFavorites
)

var viewLabels = [...]string{
	viewAll:       "All",
	viewUnread:    "Unread",
	viewFavorites: "Favorites",
}

func (v view) String() string { return viewLabels[v] }

// tabBar shows the archive views and the source being filtered on.
type tabBar struct {
	sources []string
	current int // index into sources, -1 for every source
}

func newTabBar(sources []string) tabBar {
	return tabBar{sources: sources, current: -1}
}

// nextSource cycles every source -> first source -> ... -> every source.
func (t *tabBar) nextSource() {
	if len(t.sources) == 0 {
		return
	}
	t.current++
	if t.current >= len(t.sources) {
		t.current = -1
	}
}

func (t *tabBar) source() string {
	if t.current < 0 || t.current >= len(t.sources) {
		return ""
	}
	return t.sources[t.current]
}

func (t *tabBar) sourceLabel() string {
	if s := t.source(); s != "" {
		return s
	}
	return "all sources"
}

func (t *tabBar) render(active view, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	parts := make([]string, 0, len(viewLabels))
	for v := range viewLabels {
		style := tabInactiveStyle
		if view(v) == active {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(viewLabels[v]))
	}
	left := strings.Join(parts, sep)
	right := tabSourceStyle.Render("source: " + t.sourceLabel())

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	row := left + strings.Repeat(" ", gap) + right

	return lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1).
		Render(row)
}
