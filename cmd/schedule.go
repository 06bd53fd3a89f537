package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/engdigest/internal/pipeline"
	"github.com/matheuskafuri/engdigest/internal/schedule"
)

var (
	flagScheduleTime     string
	flagScheduleTimezone string
	flagRunNow           bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the digest every day at the configured time",
	Long: `Stay in the foreground and run the digest on schedule.time (HH:MM or a cron
spec) in schedule.timezone. Stop with Ctrl+C; a run in progress is cancelled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagScheduleTime != "" {
			cfg.Schedule.Time = flagScheduleTime
		}
		if flagScheduleTimezone != "" {
			cfg.Schedule.Timezone = flagScheduleTimezone
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := pipeline.New(cfg, st, logger, pipeline.Options{})
		if err != nil {
			return err
		}

		job := func(ctx context.Context) {
			res, err := runner.Run(ctx, time.Now())
			if err != nil {
				logger.Error("scheduled run failed", "err", err)
				return
			}
			logger.Info("scheduled run finished", "run_id", res.RunID, "new", res.New, "output", res.OutputPath)
		}

		s, err := schedule.New(cfg.Schedule.Time, cfg.Schedule.Timezone, job, logger)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		if flagRunNow {
			job(ctx)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Next digest at %s\n", s.Next(time.Now()).Format("2006-01-02 15:04 MST"))
		return s.Run(ctx)
	},
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&flagScheduleTime, "time", "", "override schedule.time (HH:MM or cron spec)")
	f.StringVar(&flagScheduleTimezone, "timezone", "", "override schedule.timezone (IANA name)")
	f.BoolVar(&flagRunNow, "now", false, "run once immediately before waiting for the schedule")
	rootCmd.AddCommand(scheduleCmd)
}
