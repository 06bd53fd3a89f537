package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/deliver"
	"github.com/matheuskafuri/engdigest/internal/feed"
	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/render"
	"github.com/matheuskafuri/engdigest/internal/site"
	"github.com/matheuskafuri/engdigest/internal/store"
	"github.com/matheuskafuri/engdigest/internal/summarizer"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	articles []model.Article
	errs     []error
	blogs    []config.Blog
}

func (f *fakeFetcher) FetchAll(_ context.Context, blogs []config.Blog) feed.FetchResult {
	f.blogs = blogs
	out := make([]model.Article, len(f.articles))
	copy(out, f.articles)
	return feed.FetchResult{Articles: out, Errors: f.errs}
}

type fakeDeliverer struct {
	err error
	got []deliver.Digest
}

func (f *fakeDeliverer) Name() string { return "fake" }

func (f *fakeDeliverer) Deliver(_ context.Context, d deliver.Digest) error {
	f.got = append(f.got, d)
	return f.err
}

func post(source, url string, age time.Duration) model.Article {
	return model.Article{
		Title:     "Post " + url,
		URL:       url,
		Source:    source,
		Published: now.Add(-age),
		Content:   "The team moved the " + source + " ingestion path onto a partitioned log.\n\nLatency dropped sharply.",
	}
}

func fetched() []model.Article {
	bad := post("Alpha", "https://alpha.example.com/bad", time.Hour)
	bad.Title = ""
	return []model.Article{
		post("Alpha", "https://alpha.example.com/1", time.Hour),
		post("Alpha", "https://alpha.example.com/2", 2*time.Hour),
		post("Beta", "https://beta.example.com/1", 3*time.Hour),
		post("Beta", "https://beta.example.com/old", 48*time.Hour),
		bad,
		post("Alpha", "https://alpha.example.com/1", time.Hour),
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	disabled := false
	return &config.Config{
		Blogs: []config.Blog{
			{Name: "Alpha", Type: "rss", URL: "https://alpha.example.com/feed"},
			{Name: "Beta", Type: "rss", URL: "https://beta.example.com/feed"},
			{Name: "Gamma", Type: "rss", URL: "https://gamma.example.com/feed", Enabled: &disabled},
		},
		Fetch:   config.FetchConfig{LookbackHours: 24, MaxPostsPerBlog: 3, MaxTotalPosts: 10},
		Summary: config.SummaryConfig{Method: summarizer.FirstParagraph, MaxSentences: 3, MaxLength: 500, MaxKeywords: 5},
		Output:  config.OutputConfig{Type: render.Markdown, Path: t.TempDir(), Title: "Test Digest"},
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "digest.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func mustRun(t *testing.T, r *Runner) Result {
	t.Helper()
	res, err := r.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func mustNew(t *testing.T, cfg *config.Config, archive Archive, opts Options, options ...Option) *Runner {
	t.Helper()
	r, err := New(cfg, archive, discard(), opts, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	st := testStore(t)
	f := &fakeFetcher{articles: fetched(), errs: []error{errors.New("fetching Delta: timeout")}}

	res := mustRun(t, mustNew(t, cfg, st, Options{}, WithFetcher(f)))

	if len(f.blogs) != 2 {
		t.Errorf("disabled blogs should not be fetched, got %d blogs", len(f.blogs))
	}
	counts := []struct {
		name      string
		got, want int
	}{
		{"fetched", res.Fetched, 6},
		{"rejected", res.Rejected, 2},
		{"filtered", res.Filtered, 3},
		{"new", res.New, 3},
		{"summarized", res.Summarized, 3},
		{"fetch errors", len(res.FetchErrors), 1},
		{"warnings", len(res.Warnings), 2},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}

	if want := filepath.Join(cfg.Output.Path, "digest-2026-10-18.md"); res.OutputPath != want {
		t.Errorf("expected output %s, got %s", want, res.OutputPath)
	}
	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatalf("reading digest: %v", err)
	}
	for _, want := range []string{
		"# Test Digest – 2026-10-18",
		"**Total Articles:** 3 from 2 sources",
		"The team moved the Alpha ingestion path onto a partitioned log.",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if !fileExists(filepath.Join(cfg.Output.Path, site.IndexFile)) {
		t.Error("expected index.html next to the digest")
	}

	records, err := st.Search(context.Background(), store.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 archived records, got %d", len(records))
	}

	run, err := st.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if run.ID != res.RunID || run.Summarized != 3 || run.Method != "first_paragraph" {
		t.Errorf("unexpected run record %+v", run)
	}
}

func TestRunSkipsArchivedArticles(t *testing.T) {
	cfg := testConfig(t)
	st := testStore(t)
	f := &fakeFetcher{articles: fetched()}
	r := mustNew(t, cfg, st, Options{}, WithFetcher(f))

	mustRun(t, r)
	res := mustRun(t, r)

	if res.Filtered != 3 || res.New != 0 || res.Summarized != 0 {
		t.Errorf("expected 3 filtered, 0 new, 0 summarized, got %d, %d, %d", res.Filtered, res.New, res.Summarized)
	}
	if !strings.Contains(res.Content, "No articles found for this period.") {
		t.Errorf("expected empty digest, got:\n%s", res.Content)
	}

	res = mustRun(t, mustNew(t, cfg, st, Options{NoDedup: true}, WithFetcher(f)))
	if res.Summarized != 3 {
		t.Errorf("no-dedup: expected 3 summarized, got %d", res.Summarized)
	}
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	st := testStore(t)
	d := &fakeDeliverer{}
	res := mustRun(t, mustNew(t, cfg, st, Options{DryRun: true}, WithFetcher(&fakeFetcher{articles: fetched()}), WithDeliverers(d)))

	if res.Summarized != 3 {
		t.Errorf("expected 3 summarized, got %d", res.Summarized)
	}
	if !strings.Contains(res.Content, "**Total Articles:** 3 from 2 sources") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
	if res.OutputPath != "" {
		t.Errorf("dry run should not save, got %s", res.OutputPath)
	}
	if fileExists(filepath.Join(cfg.Output.Path, "digest-2026-10-18.md")) {
		t.Error("dry run wrote a digest file")
	}
	if len(d.got) != 0 {
		t.Errorf("dry run delivered %d digests", len(d.got))
	}

	records, err := st.Search(context.Background(), store.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("dry run archived %d records", len(records))
	}
	if _, err := st.LastRun(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("dry run recorded a run: %v", err)
	}
}

func TestRunDeliversPlainTextForHTML(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Type = render.HTML
	d := &fakeDeliverer{}
	res := mustRun(t, mustNew(t, cfg, nil, Options{}, WithFetcher(&fakeFetcher{articles: fetched()}), WithDeliverers(d)))

	if len(d.got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(d.got))
	}
	got := d.got[0]
	if got.Title != "Test Digest – 2026-10-18" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.Format != render.HTML || got.Path != res.OutputPath {
		t.Errorf("unexpected digest %+v", got)
	}
	if !strings.Contains(got.Body, "<!DOCTYPE html>") {
		t.Error("body should be the HTML digest")
	}
	if !strings.Contains(got.Plain, "Total Articles: 3 from 2 sources") || strings.Contains(got.Plain, "<html") {
		t.Errorf("plain body should be the text digest, got:\n%s", got.Plain)
	}
}

func TestRunDeliveryFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	d := &fakeDeliverer{err: errors.New("smtp down")}
	res := mustRun(t, mustNew(t, cfg, nil, Options{}, WithFetcher(&fakeFetcher{articles: fetched()}), WithDeliverers(d)))

	if len(res.DeliveryErrors) != 1 {
		t.Errorf("expected 1 delivery error, got %v", res.DeliveryErrors)
	}
	if !fileExists(res.OutputPath) {
		t.Error("digest should be saved despite delivery failure")
	}
	if d.got[0].Plain != "" {
		t.Error("markdown digests are sent as is")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	r := mustNew(t, testConfig(t), nil, Options{}, WithFetcher(&fakeFetcher{articles: fetched()}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, now); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Type = render.Format(9)
	if _, err := New(cfg, nil, discard(), Options{}); !errors.Is(err, render.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestEachMethodRuns(t *testing.T) {
	for _, m := range summarizer.Methods() {
		t.Run(m.String(), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Summary.Method = m
			res := mustRun(t, mustNew(t, cfg, nil, Options{DryRun: true}, WithFetcher(&fakeFetcher{articles: fetched()})))
			if res.Summarized != 3 {
				t.Errorf("expected 3 summarized, got %d", res.Summarized)
			}
		})
	}
}
