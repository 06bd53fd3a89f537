package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/matheuskafuri/engdigest/internal/model"
)

// TextWidth is the column summaries are wrapped at, before indentation.
const TextWidth = 74

const textIndent = 3

type TextRenderer struct {
	opts  Options
	width int
}

func (r *TextRenderer) Extension() string { return Text.Extension() }

func (r *TextRenderer) Render(summaries []model.Summary, now time.Time) (string, error) {
	var b strings.Builder
	head := heading(r.opts.title(), now)
	rule := strings.Repeat("=", len([]rune(head)))

	if len(summaries) == 0 {
		b.WriteString(head + "\n" + rule + "\n\n")
		b.WriteString(emptyMessage + "\n\n")
		b.WriteString("Generated on " + now.Format(time.DateTime) + "\n")
		return b.String(), nil
	}

	separator := strings.Repeat("-", r.width+textIndent*2)
	groups := groupBySource(summaries)
	b.WriteString(rule + "\n" + head + "\n" + rule + "\n\n")
	b.WriteString(totals(len(summaries), len(groups)) + "\n\n")
	b.WriteString(separator + "\n\n")

	for _, g := range groups {
		b.WriteString(strings.ToUpper(g.Name) + "\n")
		b.WriteString(strings.Repeat("=", len([]rune(g.Name))) + "\n\n")
		for i, s := range g.Summaries {
			r.writeSummary(&b, i+1, s, now)
		}
	}

	b.WriteString(separator + "\n\n")
	b.WriteString("Generated on " + now.Format(time.DateTime) + "\n")
	return b.String(), nil
}

func (r *TextRenderer) writeSummary(b *strings.Builder, n int, s model.Summary, now time.Time) {
	pad := strings.Repeat(" ", textIndent)
	b.WriteString(itoa(n) + ". " + s.Title + "\n\n")
	b.WriteString(pad + "URL: " + s.URL + "\n")
	if p := published(s.Published, now); p != "" {
		b.WriteString(pad + "Published: " + p + "\n")
	}
	b.WriteString("\n" + pad + "Summary:\n")
	b.WriteString(indent.String(wordwrap.String(s.Text, r.width), textIndent) + "\n\n")
	if len(s.Keywords) > 0 {
		b.WriteString(pad + "Keywords: " + strings.Join(s.Keywords, ", ") + "\n\n")
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
