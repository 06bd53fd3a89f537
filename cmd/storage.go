package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/engdigest/internal/site"
	"github.com/matheuskafuri/engdigest/internal/store"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the archive",
	Long: `Delete archived articles older than the retention period. Favorites are kept.

Uses storage.retention from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		retention := cfg.Storage.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := st.Prune(cmd.Context(), retention)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		s, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		last, err := st.LastRun(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		var lastRun *store.Run
		if err == nil {
			lastRun = &last
		}
		printStats(cmd.OutOrStdout(), cfg.Storage.Driver, s, lastRun)
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild index.html for the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := site.BuildIndex(cfg.Output.Path, cfg.Output.Title)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Index written to %s\n", path)
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	rootCmd.AddCommand(pruneCmd, statsCmd, indexCmd)
}

func printStats(w io.Writer, driver string, s store.Stats, last *store.Run) {
	if driver == "" {
		driver = "sqlite"
	}
	fmt.Fprintf(w, "Archive: %s, %s\n", driver, humanize.Bytes(uint64(s.SizeBytes)))
	fmt.Fprintf(w, "Articles: %s from %d source(s)\n", humanize.Comma(int64(s.Total)), s.Sources)
	fmt.Fprintf(w, "Read: %d  Favorites: %d\n", s.Read, s.Favorites)
	if last == nil {
		fmt.Fprintln(w, "Last run: never")
		return
	}
	fmt.Fprintf(w, "Last run: %s (%s, %d new of %d fetched, took %s)\n",
		humanize.Time(last.StartedAt), last.Method, last.New, last.Fetched,
		last.FinishedAt.Sub(last.StartedAt).Round(time.Second))
}
