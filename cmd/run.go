package cmd

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/pipeline"
	"github.com/matheuskafuri/engdigest/internal/render"
	"github.com/matheuskafuri/engdigest/internal/summarizer"
)

var (
	flagMethod  string
	flagFormat  string
	flagOutput  string
	flagSince   string
	flagDryRun  bool
	flagNoDedup bool
	flagPrint   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, summarize and write today's digest",
	Long: `Fetch every enabled blog, summarize posts not seen before and write the digest
to the output directory. Configured Telegram and email channels receive a copy.

--dry-run prints the digest without saving, archiving or delivering it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyRunFlags(cfg); err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := pipeline.New(cfg, st, logger, pipeline.Options{DryRun: flagDryRun, NoDedup: flagNoDedup})
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		res, err := runner.Run(ctx, time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagDryRun || flagPrint {
			fmt.Fprintln(out, res.Content)
		}
		printResult(out, res)
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&flagMethod, "method", "", "summarization method: first_paragraph, tfidf or textrank")
	f.StringVar(&flagFormat, "format", "", "output format: markdown, html, text or rss")
	f.StringVar(&flagOutput, "output", "", "output directory")
	f.StringVar(&flagSince, "since", "", "lookback window overriding fetch.lookback_hours (e.g., 48h, 7d)")
	f.BoolVar(&flagDryRun, "dry-run", false, "print the digest without saving or delivering")
	f.BoolVar(&flagNoDedup, "no-dedup", false, "include articles already in the archive")
	f.BoolVar(&flagPrint, "print", false, "also print the digest to stdout")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides configuration with the run flags that were set.
func applyRunFlags(cfg *config.Config) error {
	if flagMethod != "" {
		m, err := summarizer.ParseMethod(flagMethod)
		if err != nil {
			return err
		}
		cfg.Summary.Method = m
	}
	if flagFormat != "" {
		f, err := render.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		cfg.Output.Type = f
	}
	if flagOutput != "" {
		cfg.Output.Path = flagOutput
	}
	if flagSince != "" {
		d, err := parseSince(flagSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Fetch.LookbackHours = int(math.Ceil(d.Hours()))
	}
	return nil
}

func printResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "Fetched %d articles, %d new, %d summarized.\n", res.Fetched, res.New, res.Summarized)
	if res.OutputPath != "" {
		fmt.Fprintf(w, "Digest written to %s\n", res.OutputPath)
	}
	for _, err := range res.FetchErrors {
		fmt.Fprintf(w, "  [warn] %v\n", err)
	}
	for _, err := range res.DeliveryErrors {
		fmt.Fprintf(w, "  [warn] delivery: %v\n", err)
	}
}
