package render

import (
	"strings"
	"time"

	"github.com/matheuskafuri/engdigest/internal/model"
)

type MarkdownRenderer struct {
	opts Options
}

func (r *MarkdownRenderer) Extension() string { return Markdown.Extension() }

func (r *MarkdownRenderer) Render(summaries []model.Summary, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("# " + heading(r.opts.title(), now) + "\n\n")

	if len(summaries) == 0 {
		b.WriteString(emptyMessage + "\n\n")
		b.WriteString("*Generated on " + now.Format(time.DateTime) + "*\n")
		return b.String(), nil
	}

	groups := groupBySource(summaries)
	b.WriteString("**" + totalsLabel + "** " + counts(len(summaries), len(groups)) + "\n\n---\n\n")
	for _, g := range groups {
		b.WriteString("## " + g.Name + "\n\n")
		for i, s := range g.Summaries {
			writeMarkdownSummary(&b, i+1, s, now)
			if i < len(g.Summaries)-1 {
				b.WriteString("---\n\n")
			}
		}
	}
	b.WriteString("---\n\n*Generated on " + now.Format(time.DateTime) + "*\n")
	return b.String(), nil
}

func writeMarkdownSummary(b *strings.Builder, n int, s model.Summary, now time.Time) {
	b.WriteString("### " + itoa(n) + ". " + s.Title + "\n\n")
	b.WriteString("**URL:** " + s.URL + "\n\n")
	if p := published(s.Published, now); p != "" {
		b.WriteString("**Published:** " + p + "\n\n")
	}
	b.WriteString("**Summary:**\n\n" + s.Text + "\n\n")
	if len(s.Keywords) > 0 {
		b.WriteString("**Keywords:** " + strings.Join(s.Keywords, ", ") + "\n\n")
	}
}
