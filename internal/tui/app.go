// Package tui is the terminal browser for the digest archive.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/engdigest/internal/store"
)

// Archive is the store surface the browser reads and updates.
type Archive interface {
	Search(ctx context.Context, q store.Query) ([]store.Record, error)
	MarkRead(ctx context.Context, url string, read bool) error
	MarkFavorite(ctx context.Context, url string, favorite bool) error
}

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeHelp
)

const queryTimeout = 10 * time.Second

type App struct {
	archive Archive
	records []store.Record
	cursor  int
	focus   focusPane
	mode    mode
	view    view
	tabs    tabBar

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model

	loading       bool
	since         time.Time
	previewScroll int
	err           error

	open func(string) error
	now  func() time.Time
}

// Options configure the browser. Query and Since seed the first search.
type Options struct {
	Archive   Archive
	Sources   []string
	Query     string
	Since     time.Time
	Unread    bool
	Favorites bool
}

func NewApp(opts Options) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, summary, keywords..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100
	ti.SetValue(opts.Query)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	v := viewAll
	switch {
	case opts.Favorites:
		v = viewFavorites
	case opts.Unread:
		v = viewUnread
	}

	return &App{
		archive:     opts.Archive,
		view:        v,
		tabs:        newTabBar(opts.Sources),
		searchInput: ti,
		spinner:     sp,
		since:       opts.Since,
		loading:     true,
		open:        openInBrowser,
		now:         time.Now,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), a.spinner.Tick)
}

func (a *App) query() store.Query {
	return store.Query{
		Text:      strings.TrimSpace(a.searchInput.Value()),
		Source:    a.tabs.source(),
		Unread:    a.view == viewUnread,
		Favorites: a.view == viewFavorites,
		Since:     a.since,
	}
}

// loadCmd captures the current query so later edits cannot race the search.
func (a *App) loadCmd() tea.Cmd {
	q := a.query()
	archive := a.archive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		records, err := archive.Search(ctx, q)
		if err != nil {
			return errMsg{err: err}
		}
		return recordsLoadedMsg{records: records}
	}
}

func (a *App) reload() tea.Cmd {
	a.loading = true
	a.cursor = 0
	a.previewScroll = 0
	return tea.Batch(a.loadCmd(), a.spinner.Tick)
}

func (a *App) setFlagCmd(url string, f flag, value bool) tea.Cmd {
	archive := a.archive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		var err error
		if f == flagRead {
			err = archive.MarkRead(ctx, url, value)
		} else {
			err = archive.MarkFavorite(ctx, url, value)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return flagUpdatedMsg{url: url, flag: f, value: value}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) selected() *store.Record {
	if a.cursor < 0 || a.cursor >= len(a.records) {
		return nil
	}
	return &a.records[a.cursor]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case recordsLoadedMsg:
		a.loading = false
		a.records = msg.records
		if a.cursor >= len(a.records) {
			a.cursor = max(0, len(a.records)-1)
		}
		return a, nil

	case flagUpdatedMsg:
		for i := range a.records {
			if a.records[i].URL != msg.url {
				continue
			}
			if msg.flag == flagRead {
				a.records[i].IsRead = msg.value
			} else {
				a.records[i].IsFavorite = msg.value
			}
		}
		return a, nil

	case errMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.records)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
	case "o", "enter":
		if r := a.selected(); r != nil {
			return a, a.openCmd(r.URL)
		}
	case "r":
		if r := a.selected(); r != nil {
			return a, a.setFlagCmd(r.URL, flagRead, !r.IsRead)
		}
	case "f":
		if r := a.selected(); r != nil {
			return a, a.setFlagCmd(r.URL, flagFavorite, !r.IsFavorite)
		}
	case "u":
		return a, a.switchView(viewUnread)
	case "*":
		return a, a.switchView(viewFavorites)
	case "a":
		return a, a.switchView(viewAll)
	case "s":
		a.tabs.nextSource()
		return a, a.reload()
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "?":
		a.mode = modeHelp
	}
	return a, nil
}

func (a *App) switchView(v view) tea.Cmd {
	a.view = v
	return a.reload()
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		return a, a.reload()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, a.reload()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  engdigest")
	}
	if a.mode == modeHelp {
		return a.renderHelp()
	}

	contentHeight := max(3, a.height-3-4) // header, tabs, status, borders
	listWidth := int(float64(a.width) * 0.38)
	previewWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("engdigest archive")
	headerRight := headerDateStyle.Render(a.now().Format("Mon Jan 2"))
	gap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + strings.Repeat(" ", gap) + headerRight

	bar := a.tabs.render(a.view, a.width)
	if a.mode == modeSearch {
		bar = a.searchInput.View()
	}

	listStyle, previewStyle := paneActiveStyle, paneStyle
	if a.focus == focusPreview {
		listStyle, previewStyle = paneStyle, paneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).
		Render(renderList(a.records, a.cursor, contentHeight, listWidth-4, a.now()))
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).
		Render(renderPreview(a.selected(), previewWidth-4, contentHeight, a.previewScroll))
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(len(a.records), a.view, a.tabs.source(), a.query().Text, a.width, a.mode == modeSearch)
	if a.loading {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("engdigest")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through articles\n" +
		"  tab           Switch between list and preview\n\n" +
		dim.Render("Articles") + "\n" +
		"  o, enter      Open in browser\n" +
		"  r             Toggle read\n" +
		"  f             Toggle favorite\n\n" +
		dim.Render("Views") + "\n" +
		"  /             Search\n" +
		"  u             Unread\n" +
		"  *             Favorites\n" +
		"  a             All articles\n" +
		"  s             Cycle source filter\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(help))
}

// Run starts the browser and blocks until the user quits.
func Run(opts Options) error {
	if opts.Archive == nil {
		return fmt.Errorf("tui: no archive")
	}
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
