// Package render turns summaries into digest documents.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matheuskafuri/engdigest/internal/model"
)

const (
	DefaultTitle = "Engineering Daily Digest"
	emptyMessage = "No articles found for this period."
	dateLayout   = "2006-01-02"
	stampLayout  = "2006-01-02 15:04"
)

type Renderer interface {
	Render(summaries []model.Summary, now time.Time) (string, error)
	Extension() string
}

// Options are shared by every renderer. SiteURL is only used by RSS.
type Options struct {
	Title   string
	SiteURL string
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case Markdown:
		return &MarkdownRenderer{opts: opts}, nil
	case HTML:
		return &HTMLRenderer{opts: opts}, nil
	case Text:
		return &TextRenderer{opts: opts, width: TextWidth}, nil
	case RSS:
		return &RSSRenderer{opts: opts}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

type sourceGroup struct {
	Name      string
	Summaries []model.Summary
}

// groupBySource returns groups sorted by source name, keeping input order
// inside each group.
func groupBySource(summaries []model.Summary) []sourceGroup {
	index := map[string]int{}
	var groups []sourceGroup
	for _, s := range summaries {
		i, ok := index[s.Source]
		if !ok {
			i = len(groups)
			index[s.Source] = i
			groups = append(groups, sourceGroup{Name: s.Source})
		}
		groups[i].Summaries = append(groups[i].Summaries, s)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func heading(title string, now time.Time) string {
	return fmt.Sprintf("%s – %s", title, now.Format(dateLayout))
}

const totalsLabel = "Total Articles:"

func totals(n, sources int) string {
	return totalsLabel + " " + counts(n, sources)
}

func counts(n, sources int) string {
	return fmt.Sprintf("%d from %d sources", n, sources)
}

// published formats a publish time with its age, or "" when unknown.
func published(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", t.Format(stampLayout), humanize.RelTime(t, now, "ago", "from now"))
}

// FileName is the saved name of the digest generated at now.
func FileName(ext string, now time.Time) string {
	return fmt.Sprintf("digest-%s.%s", now.Format(dateLayout), ext)
}

// Save writes content to dir, creating it if needed, and returns the file path.
func Save(dir, content, ext string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(ext, now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing digest: %w", err)
	}
	return path, nil
}
