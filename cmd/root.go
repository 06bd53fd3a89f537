package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/store"
	"github.com/matheuskafuri/engdigest/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig    string
	flagVerbose   bool
	flagLogFormat string

	// flags resolves root flags against ENGDIGEST_* variables.
	flags  = viper.New()
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "engdigest",
	Short: "Daily digest of engineering blog posts",
	Long: `engdigest fetches engineering blogs, summarizes new posts with extractive
algorithms (first paragraph, TF-IDF or TextRank) and writes a daily digest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()
		l, err := newLogger(cmd.ErrOrStderr(), flags.GetString("log-format"), flags.GetBool("verbose"))
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file (default $XDG_CONFIG_HOME/engdigest/config.yaml)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flagLogFormat, "log-format", "text", "log format: text or json")

	flags.SetEnvPrefix(config.EnvPrefix)
	flags.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	flags.AutomaticEnv()
	for _, name := range []string{"config", "verbose", "log-format"} {
		_ = flags.BindPFlag(name, pf.Lookup(name))
	}

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check for a newer release")
	rootCmd.AddCommand(versionCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "engdigest %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return nil
		}
		res, err := update.Checker{}.Check(cmd.Context(), version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(out, "Up to date.")
			return nil
		}
		fmt.Fprintf(out, "Update available: v%s %s\n", res.LatestVersion, res.URL)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q (valid: text, json)", format)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Target())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}
