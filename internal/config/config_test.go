package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/engdigest/internal/render"
	"github.com/matheuskafuri/engdigest/internal/summarizer"
)

func boolPtr(b bool) *bool { return &b }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Blogs) == 0 {
		t.Error("expected at least one default blog")
	}
	if cfg.Summary.Method != summarizer.FirstParagraph {
		t.Errorf("expected first_paragraph, got %s", cfg.Summary.Method)
	}
	if cfg.Output.Type != render.Markdown {
		t.Errorf("expected markdown, got %s", cfg.Output.Type)
	}
	if cfg.Fetch.MaxTotalPosts != 10 || cfg.Fetch.MaxPostsPerBlog != 3 || cfg.Fetch.LookbackHours != 24 {
		t.Errorf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `blogs:
  - name: Test
    type: atom
    url: https://example.com/feed
summary:
  method: tfidf
  max_keywords: 8
output:
  type: html
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Blogs) != 1 || cfg.Blogs[0].Name != "Test" {
		t.Fatalf("expected only the user blog, got %+v", cfg.Blogs)
	}
	if !cfg.Blogs[0].IsEnabled() {
		t.Error("blog without enabled key should be enabled")
	}
	if cfg.Summary.Method != summarizer.TFIDF {
		t.Errorf("expected tfidf, got %s", cfg.Summary.Method)
	}
	if cfg.Summary.MaxKeywords != 8 {
		t.Errorf("expected 8 keywords, got %d", cfg.Summary.MaxKeywords)
	}
	// Unset keys keep their defaults
	if cfg.Summary.MaxLength != 500 {
		t.Errorf("expected default max_length 500, got %d", cfg.Summary.MaxLength)
	}
	if cfg.Output.Type != render.HTML {
		t.Errorf("expected html, got %s", cfg.Output.Type)
	}
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	path := writeConfig(t, `blogs:
  - name: Test
    type: rss
    url: https://example.com/feed
summary:
  method: llm
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
	if !errors.Is(err, summarizer.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Blogs) == 0 {
		t.Error("expected default blogs when config doesn't exist")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults written to %s: %v", path, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENGDIGEST_SUMMARY_METHOD", "textrank")
	t.Setenv("ENGDIGEST_OUTPUT_TYPE", "rss")
	t.Setenv("ENGDIGEST_OUTPUT_PATH", "/tmp/out")
	t.Setenv("ENGDIGEST_TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("ENGDIGEST_TELEGRAM_CHAT_ID", "12345")

	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if err := applyEnv(cfg, envViper()); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Summary.Method != summarizer.TextRank {
		t.Errorf("expected textrank, got %s", cfg.Summary.Method)
	}
	if cfg.Output.Type != render.RSS {
		t.Errorf("expected rss, got %s", cfg.Output.Type)
	}
	if cfg.Output.Path != "/tmp/out" {
		t.Errorf("expected /tmp/out, got %s", cfg.Output.Path)
	}
	if cfg.Output.Telegram.BotToken != "secret" || cfg.Output.Telegram.ChatID != 12345 {
		t.Errorf("unexpected telegram config: %+v", cfg.Output.Telegram)
	}
}

func TestEnvOverrideInvalidMethod(t *testing.T) {
	t.Setenv("ENGDIGEST_SUMMARY_METHOD", "magic")
	cfg, _ := loadDefaults()
	if err := applyEnv(cfg, envViper()); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 90},        // default
		{"invalid", 90}, // fallback to default
	}
	for _, tt := range tests {
		s := StorageConfig{Retention: tt.input}
		got := s.RetentionDuration()
		wantHours := float64(tt.wantDays * 24)
		if got.Hours() != wantHours {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestTimeoutDuration(t *testing.T) {
	if d := (FetchConfig{Timeout: "5s"}).TimeoutDuration(); d != 5*time.Second {
		t.Errorf("expected 5s, got %v", d)
	}
	if d := (FetchConfig{Timeout: "soon"}).TimeoutDuration(); d != 30*time.Second {
		t.Errorf("expected 30s fallback, got %v", d)
	}
}

func TestEnabledBlogs(t *testing.T) {
	cfg := &Config{
		Blogs: []Blog{
			{Name: "A", Enabled: boolPtr(true)},
			{Name: "B", Enabled: boolPtr(false)},
			{Name: "C"},
		},
	}
	names := cfg.BlogNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 enabled blogs, got %d", len(names))
	}
	if names[0] != "A" || names[1] != "C" {
		t.Errorf("unexpected enabled blogs: %v", names)
	}
}

func TestSummaryOptions(t *testing.T) {
	stopFile := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(stopFile, []byte("kubernetes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := SummaryConfig{MaxSentences: 2, MaxLength: 100, MaxKeywords: 4, StopWordsExtra: []string{"Engineering"}, StopWordsFile: stopFile}
	opts, err := s.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.MaxSentences != 2 || opts.MaxLength != 100 || opts.MaxKeywords != 4 {
		t.Errorf("unexpected thresholds: %+v", opts)
	}
	for _, w := range []string{"the", "engineering", "kubernetes"} {
		if !opts.StopWords.Contains(w) {
			t.Errorf("expected stop word %q", w)
		}
	}

	s.StopWordsFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := s.Options(); err == nil {
		t.Error("expected error for missing stop words file")
	}
}

func TestDBPath(t *testing.T) {
	if got := (StorageConfig{Path: "/x/y.db"}).DBPath(); got != "/x/y.db" {
		t.Errorf("expected explicit path, got %s", got)
	}
	if got := (StorageConfig{}).DBPath(); !strings.HasSuffix(got, filepath.Join("engdigest", "engdigest.db")) {
		t.Errorf("unexpected default path %s", got)
	}
}

func validConfig() *Config {
	return &Config{
		Blogs:   []Blog{{Name: "A", Type: "rss", URL: "https://example.com/feed"}},
		Summary: SummaryConfig{MaxSentences: 3, MaxLength: 500, MaxKeywords: 5},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no blogs", func(c *Config) { c.Blogs = nil }},
		{"missing name", func(c *Config) { c.Blogs[0].Name = "" }},
		{"missing url", func(c *Config) { c.Blogs[0].URL = "" }},
		{"bad scheme", func(c *Config) { c.Blogs[0].URL = "ftp://example.com/feed" }},
		{"bad type", func(c *Config) { c.Blogs[0].Type = "json" }},
		{"negative limit", func(c *Config) { c.Fetch.MaxTotalPosts = -1 }},
		{"zero keywords", func(c *Config) { c.Summary.MaxKeywords = 0 }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"email incomplete", func(c *Config) { c.Output.Email.Enabled = true }},
		{"telegram incomplete", func(c *Config) { c.Output.Telegram.Enabled = true }},
	}

	if err := validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		err := validate(cfg)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestValidateHTMLBlog(t *testing.T) {
	cfg := validConfig()
	cfg.Blogs[0].Type = "html"
	if err := validate(cfg); err != nil {
		t.Errorf("html blogs should be accepted: %v", err)
	}
}
