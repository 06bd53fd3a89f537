package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/engdigest/internal/tui"
)

var (
	flagBrowseSince     string
	flagBrowseQuery     string
	flagBrowseUnread    bool
	flagBrowseFavorites bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse archived summaries in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var since time.Time
		if flagBrowseSince != "" {
			d, err := parseSince(flagBrowseSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			since = time.Now().Add(-d)
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		return tui.Run(tui.Options{
			Archive:   st,
			Sources:   cfg.BlogNames(),
			Query:     flagBrowseQuery,
			Since:     since,
			Unread:    flagBrowseUnread,
			Favorites: flagBrowseFavorites,
		})
	},
}

func init() {
	f := browseCmd.Flags()
	f.StringVar(&flagBrowseSince, "since", "", "only show articles newer than this (e.g., 24h, 7d)")
	f.StringVarP(&flagBrowseQuery, "query", "q", "", "initial search query")
	f.BoolVar(&flagBrowseUnread, "unread", false, "start in the unread view")
	f.BoolVar(&flagBrowseFavorites, "favorites", false, "start in the favorites view")
	rootCmd.AddCommand(browseCmd)
}
