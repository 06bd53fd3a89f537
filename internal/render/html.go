package render

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/matheuskafuri/engdigest/internal/model"
)

//go:embed templates/digest.html.tmpl
var templateFS embed.FS

var digestTemplate = template.Must(template.ParseFS(templateFS, "templates/digest.html.tmpl"))

type HTMLRenderer struct {
	opts Options
}

func (r *HTMLRenderer) Extension() string { return HTML.Extension() }

type htmlItem struct {
	Index     int
	Title     string
	URL       template.URL
	Published string
	Text      string
	Keywords  []string
}

type htmlGroup struct {
	Name  string
	Items []htmlItem
}

type htmlPage struct {
	Title     string
	Heading   string
	Date      string
	Totals    string
	Groups    []htmlGroup
	Empty     string
	Generated string
}

func (r *HTMLRenderer) Render(summaries []model.Summary, now time.Time) (string, error) {
	page := htmlPage{
		Title:     r.opts.title(),
		Heading:   heading(r.opts.title(), now),
		Date:      now.Format(dateLayout),
		Empty:     emptyMessage,
		Generated: now.Format(time.DateTime),
	}
	groups := groupBySource(summaries)
	page.Totals = totals(len(summaries), len(groups))
	for _, g := range groups {
		hg := htmlGroup{Name: g.Name}
		for i, s := range g.Summaries {
			hg.Items = append(hg.Items, htmlItem{
				Index:     i + 1,
				Title:     s.Title,
				URL:       safeURL(s.URL),
				Published: published(s.Published, now),
				Text:      s.Text,
				Keywords:  s.Keywords,
			})
		}
		page.Groups = append(page.Groups, hg)
	}

	var b strings.Builder
	if err := digestTemplate.Execute(&b, page); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return b.String(), nil
}

// safeURL passes through http(s) links and blanks anything else.
func safeURL(u string) template.URL {
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return template.URL(u)
	}
	return template.URL("#")
}
