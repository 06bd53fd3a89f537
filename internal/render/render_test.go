package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/matheuskafuri/engdigest/internal/model"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleSummaries() []model.Summary {
	return []model.Summary{
		{Title: "Beta post", URL: "https://beta.example.com/1", Source: "Beta", Published: now.Add(-3 * time.Hour), Text: "Beta summary.", Keywords: []string{"go", "queue"}},
		{Title: "A one", URL: "https://alpha.example.com/1", Source: "Alpha", Published: now.Add(-5 * time.Hour), Text: "First alpha summary.", Keywords: []string{}},
		{Title: "A two", URL: "https://alpha.example.com/2", Source: "Alpha", Text: "Second alpha summary.", Keywords: []string{"cache"}},
	}
}

func render(t *testing.T, f Format, summaries []model.Summary) string {
	t.Helper()
	r, err := New(f, Options{Title: "Digest", SiteURL: "https://digest.example.com/"})
	if err != nil {
		t.Fatalf("New(%s): %v", f, err)
	}
	out, err := r.Render(summaries, now)
	if err != nil {
		t.Fatalf("Render(%s): %v", f, err)
	}
	return out
}

func assertOrder(t *testing.T, out string, parts ...string) {
	t.Helper()
	last := -1
	for _, p := range parts {
		i := strings.Index(out, p)
		if i < 0 {
			t.Fatalf("output missing %q:\n%s", p, out)
		}
		if i < last {
			t.Errorf("%q appears out of order", p)
		}
		last = i
	}
}

func TestMarkdown(t *testing.T) {
	out := render(t, Markdown, sampleSummaries())

	assertOrder(t, out,
		"# Digest – 2026-10-18",
		"**Total Articles:** 3 from 2 sources",
		"## Alpha",
		"### 1. A one",
		"### 2. A two",
		"## Beta",
		"### 1. Beta post",
	)
	for _, want := range []string{
		"**URL:** https://beta.example.com/1",
		"**Published:** 2026-10-18 09:00 (3 hours ago)",
		"**Keywords:** go, queue",
		"Beta summary.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Count(out, "**Published:**") != 2 {
		t.Error("articles without a publish time should omit the line")
	}
	if strings.Contains(out, "**Total Articles: ") {
		t.Error("only the totals label should be bold")
	}
}

func TestEmptyDigests(t *testing.T) {
	for _, f := range []Format{Markdown, Text, HTML} {
		out := render(t, f, nil)
		if !strings.Contains(out, "No articles found for this period.") {
			t.Errorf("%s: missing empty message", f)
		}
		if strings.Contains(out, "Total Articles") {
			t.Errorf("%s: empty digest should not print totals", f)
		}
	}
}

func TestTextWraps(t *testing.T) {
	summaries := sampleSummaries()
	summaries[0].Text = strings.Repeat("distributed systems need careful thought ", 12)
	out := render(t, Text, summaries)

	assertOrder(t, out, "Digest – 2026-10-18", "Total Articles: 3 from 2 sources", "ALPHA", "BETA")
	for _, line := range strings.Split(out, "\n") {
		if n := utf8.RuneCountInString(line); n > TextWidth+2*textIndent {
			t.Errorf("line too long (%d): %q", n, line)
		}
	}
	if !strings.Contains(out, "   Keywords: go, queue") {
		t.Error("missing indented keywords")
	}
}

func TestHTMLEscapes(t *testing.T) {
	summaries := []model.Summary{{
		Title:    "<script>alert(1)</script>",
		URL:      "javascript:alert(1)",
		Source:   "Evil",
		Text:     "a < b",
		Keywords: []string{"xss"},
	}}
	out := render(t, HTML, summaries)

	if strings.Contains(out, "<script>alert") {
		t.Error("title not escaped")
	}
	if strings.Contains(out, "javascript:") {
		t.Error("unsafe URL kept")
	}
	if !strings.Contains(out, "a &lt; b") {
		t.Error("summary not escaped")
	}
	if !strings.Contains(out, `<span class="keyword">xss</span>`) {
		t.Error("keywords missing")
	}
}

func TestHTMLGroupsBySource(t *testing.T) {
	out := render(t, HTML, sampleSummaries())
	assertOrder(t, out, "<title>Digest – 2026-10-18</title>", "Total Articles: 3 from 2 sources", ">Alpha<", ">Beta<")
	if !strings.Contains(out, `href="https://alpha.example.com/2"`) {
		t.Error("article link missing")
	}
}

func TestRSSParses(t *testing.T) {
	out := render(t, RSS, sampleSummaries())

	feed, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("generated feed does not parse: %v", err)
	}
	if feed.Title != "Digest" {
		t.Errorf("title = %q", feed.Title)
	}
	if len(feed.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(feed.Items))
	}
	first := feed.Items[0]
	if first.GUID != "https://beta.example.com/1" || first.Link != "https://beta.example.com/1" {
		t.Errorf("guid/link = %q/%q", first.GUID, first.Link)
	}
	if strings.Join(first.Categories, ",") != "go,queue" {
		t.Errorf("categories = %v", first.Categories)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(now.Add(-3*time.Hour)) {
		t.Errorf("pubDate = %v", first.PublishedParsed)
	}
	if feed.Items[2].PublishedParsed != nil {
		t.Error("missing publish time should be omitted")
	}
	if !strings.Contains(out, `href="https://digest.example.com/rss.xml"`) {
		t.Error("self link should use the site URL")
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New(Format(42), Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestExtensions(t *testing.T) {
	want := map[Format]string{Markdown: "md", HTML: "html", Text: "txt", RSS: "xml"}
	for f, ext := range want {
		r, err := New(f, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if r.Extension() != ext {
			t.Errorf("%s extension = %q, want %q", f, r.Extension(), ext)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", Markdown, false},
		{"MD", Markdown, false},
		{" html ", HTML, false},
		{"txt", Text, false},
		{"plain", Text, false},
		{"rss", RSS, false},
		{"xml", RSS, false},
		{"pdf", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := Save(dir, "hello", "md", now)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "digest-2026-10-18.md" {
		t.Errorf("unexpected file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
}
