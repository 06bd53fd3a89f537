package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/engdigest/internal/store"
)

var (
	flagSearchSource    string
	flagSearchSince     string
	flagSearchLimit     int
	flagSearchUnread    bool
	flagSearchFavorites bool

	flagMarkRead       bool
	flagMarkUnread     bool
	flagMarkFavorite   bool
	flagMarkUnfavorite bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived summaries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := store.Query{
			Source:    flagSearchSource,
			Unread:    flagSearchUnread,
			Favorites: flagSearchFavorites,
			Limit:     flagSearchLimit,
		}
		if len(args) == 1 {
			q.Text = args[0]
		}
		if flagSearchSince != "" {
			d, err := parseSince(flagSearchSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			q.Since = time.Now().Add(-d)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records, time.Now())
		return nil
	},
}

var markCmd = &cobra.Command{
	Use:   "mark <url>",
	Short: "Set the read or favorite flag of an archived article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMarkRead && flagMarkUnread || flagMarkFavorite && flagMarkUnfavorite {
			return errors.New("conflicting flags")
		}
		if !flagMarkRead && !flagMarkUnread && !flagMarkFavorite && !flagMarkUnfavorite {
			return errors.New("one of --read, --unread, --favorite or --unfavorite is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, url := cmd.Context(), args[0]
		if flagMarkRead || flagMarkUnread {
			if err := st.MarkRead(ctx, url, flagMarkRead); err != nil {
				return err
			}
		}
		if flagMarkFavorite || flagMarkUnfavorite {
			if err := st.MarkFavorite(ctx, url, flagMarkFavorite); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Updated", url)
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&flagSearchSource, "source", "", "only this blog")
	f.StringVar(&flagSearchSince, "since", "", "only articles newer than this (e.g., 24h, 7d)")
	f.IntVarP(&flagSearchLimit, "limit", "n", 20, "maximum results")
	f.BoolVar(&flagSearchUnread, "unread", false, "only unread articles")
	f.BoolVar(&flagSearchFavorites, "favorites", false, "only favorites")

	m := markCmd.Flags()
	m.BoolVar(&flagMarkRead, "read", false, "mark as read")
	m.BoolVar(&flagMarkUnread, "unread", false, "mark as unread")
	m.BoolVar(&flagMarkFavorite, "favorite", false, "add to favorites")
	m.BoolVar(&flagMarkUnfavorite, "unfavorite", false, "remove from favorites")

	rootCmd.AddCommand(searchCmd, markCmd)
}

func printRecords(w io.Writer, records []store.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}
	for _, r := range records {
		marks := ""
		if r.IsFavorite {
			marks += "*"
		}
		if !r.IsRead {
			marks += "•"
		}
		fmt.Fprintf(w, "%-2s %s\n", marks, r.Title)
		fmt.Fprintf(w, "   %s · %s\n", r.Source, humanize.RelTime(r.Published, now, "ago", "from now"))
		if r.Summary != "" {
			fmt.Fprintf(w, "   %s\n", r.Summary)
		}
		if len(r.Keywords) > 0 {
			fmt.Fprintf(w, "   [%s]\n", strings.Join(r.Keywords, ", "))
		}
		fmt.Fprintf(w, "   %s\n\n", r.URL)
	}
}
