package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/engdigest/internal/render"
	"github.com/matheuskafuri/engdigest/internal/summarizer"
	"github.com/matheuskafuri/engdigest/internal/text"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

const EnvPrefix = "ENGDIGEST"

type Blog struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // "rss", "atom" or "html"
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled treats a missing enabled key as true.
func (b Blog) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

type FetchConfig struct {
	LookbackHours   int     `yaml:"lookback_hours"`
	MaxPostsPerBlog int     `yaml:"max_posts_per_blog"`
	MaxTotalPosts   int     `yaml:"max_total_posts"`
	Timeout         string  `yaml:"timeout"`
	Concurrency     int     `yaml:"concurrency"`
	RatePerSecond   float64 `yaml:"rate_per_second"`
	UserAgent       string  `yaml:"user_agent"`
	FullContent     bool    `yaml:"full_content"`
	HTMLFallback    bool    `yaml:"html_fallback"`
}

func (f FetchConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(f.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type SummaryConfig struct {
	Method         summarizer.Method `yaml:"method"`
	MaxSentences   int               `yaml:"max_sentences"`
	MaxLength      int               `yaml:"max_length"`
	MaxKeywords    int               `yaml:"max_keywords"`
	StopWordsExtra []string          `yaml:"stop_words_extra"`
	StopWordsFile  string            `yaml:"stop_words_file"`
}

// Options resolves the stop-word set and thresholds for the summarizers.
func (s SummaryConfig) Options() (summarizer.Options, error) {
	stop := text.DefaultStopWords()
	if s.StopWordsFile != "" {
		extra, err := text.LoadStopWords(s.StopWordsFile)
		if err != nil {
			return summarizer.Options{}, err
		}
		stop = stop.Union(extra)
	}
	return summarizer.Options{
		MaxSentences: s.MaxSentences,
		MaxLength:    s.MaxLength,
		MaxKeywords:  s.MaxKeywords,
		StopWords:    stop.With(s.StopWordsExtra...),
	}, nil
}

type EmailConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUser     string   `yaml:"smtp_user"`
	SMTPPassword string   `yaml:"smtp_password"`
	From         string   `yaml:"from_email"`
	To           []string `yaml:"to_emails"`
	UseTLS       bool     `yaml:"use_tls"`
	UseSSL       bool     `yaml:"use_ssl"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type OutputConfig struct {
	Type     render.Format  `yaml:"type"`
	Path     string         `yaml:"path"`
	Title    string         `yaml:"title"`
	SiteURL  string         `yaml:"site_url"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // "sqlite" or "postgres"
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	Retention string `yaml:"retention"`
}

// DBPath is the sqlite file, defaulting to the XDG data directory.
func (s StorageConfig) DBPath() string {
	if s.Path != "" {
		return s.Path
	}
	return filepath.Join(xdg.DataHome, "engdigest", "engdigest.db")
}

// Target is the argument store.Open expects for the configured driver.
func (s StorageConfig) Target() string {
	if s.Driver == "postgres" {
		return s.DSN
	}
	return s.DBPath()
}

func (s StorageConfig) RetentionDuration() time.Duration {
	if s.Retention == "" {
		return 90 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if len(s.Retention) > 1 && s.Retention[len(s.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(s.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

type ScheduleConfig struct {
	Time     string `yaml:"time"`
	Timezone string `yaml:"timezone"`
}

type Config struct {
	Blogs    []Blog         `yaml:"blogs"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Summary  SummaryConfig  `yaml:"summary"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

func (c *Config) EnabledBlogs() []Blog {
	var out []Blog
	for _, b := range c.Blogs {
		if b.IsEnabled() {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) BlogNames() []string {
	var names []string
	for _, b := range c.EnabledBlogs() {
		names = append(names, b.Name)
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "engdigest", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the embedded defaults, applies ENGDIGEST_* environment
// overrides and validates the result. A missing file is created from the
// defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: embedded defaults still apply
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, envViper()); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func envViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// applyEnv overrides selected settings from the environment, e.g.
// ENGDIGEST_SUMMARY_METHOD or ENGDIGEST_TELEGRAM_BOT_TOKEN.
func applyEnv(cfg *Config, v *viper.Viper) error {
	if s := v.GetString("summary_method"); s != "" {
		m, err := summarizer.ParseMethod(s)
		if err != nil {
			return fmt.Errorf("%w: %s_SUMMARY_METHOD: %w", ErrInvalid, EnvPrefix, err)
		}
		cfg.Summary.Method = m
	}
	if s := v.GetString("output_type"); s != "" {
		f, err := render.ParseFormat(s)
		if err != nil {
			return fmt.Errorf("%w: %s_OUTPUT_TYPE: %w", ErrInvalid, EnvPrefix, err)
		}
		cfg.Output.Type = f
	}
	if s := v.GetString("output_path"); s != "" {
		cfg.Output.Path = s
	}
	if s := v.GetString("storage_dsn"); s != "" {
		cfg.Storage.DSN = s
	}
	if s := v.GetString("storage_driver"); s != "" {
		cfg.Storage.Driver = s
	}
	if s := v.GetString("smtp_password"); s != "" {
		cfg.Output.Email.SMTPPassword = s
	}
	if s := v.GetString("telegram_bot_token"); s != "" {
		cfg.Output.Telegram.BotToken = s
	}
	if v.IsSet("telegram_chat_id") {
		cfg.Output.Telegram.ChatID = v.GetInt64("telegram_chat_id")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validate(cfg *Config) error {
	if len(cfg.Blogs) == 0 {
		return invalid("at least one blog must be configured")
	}
	validTypes := map[string]bool{"rss": true, "atom": true, "html": true}
	for i, b := range cfg.Blogs {
		if b.Name == "" {
			return invalid("blog %d: name is required", i)
		}
		if b.URL == "" {
			return invalid("blog %q: url is required", b.Name)
		}
		u, err := url.Parse(b.URL)
		if err != nil {
			return invalid("blog %q: invalid url: %v", b.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return invalid("blog %q: url scheme must be http or https, got %q", b.Name, u.Scheme)
		}
		if !validTypes[b.Type] {
			return invalid("blog %q: unknown type %q (valid: rss, atom, html)", b.Name, b.Type)
		}
	}

	f := cfg.Fetch
	if f.LookbackHours < 0 || f.MaxPostsPerBlog < 0 || f.MaxTotalPosts < 0 {
		return invalid("fetch limits must not be negative")
	}
	s := cfg.Summary
	if s.MaxSentences < 1 || s.MaxLength < 1 || s.MaxKeywords < 1 {
		return invalid("summary max_sentences, max_length and max_keywords must be positive")
	}

	switch cfg.Storage.Driver {
	case "", "sqlite":
	case "postgres":
		if cfg.Storage.DSN == "" {
			return invalid("storage: postgres driver requires dsn")
		}
	default:
		return invalid("storage: unknown driver %q (valid: sqlite, postgres)", cfg.Storage.Driver)
	}

	e := cfg.Output.Email
	if e.Enabled && (e.SMTPHost == "" || e.From == "" || len(e.To) == 0) {
		return invalid("email: smtp_host, from_email and to_emails are required when enabled")
	}
	t := cfg.Output.Telegram
	if t.Enabled && (t.BotToken == "" || t.ChatID == 0) {
		return invalid("telegram: bot_token and chat_id are required when enabled")
	}
	return nil
}
