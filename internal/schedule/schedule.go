// Package schedule runs the digest pipeline on a daily time or cron spec.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Job is one scheduled run. The context ends when the scheduler stops.
type Job func(ctx context.Context)

type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	spec     string
	loc      *time.Location
	logger   *slog.Logger
	job      Job

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// Spec converts "HH:MM" to a daily cron spec. Anything else must already be
// a standard cron spec or descriptor.
func Spec(s string) (string, error) {
	if m := clockTime.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	}
	if _, err := cron.ParseStandard(s); err != nil {
		return "", fmt.Errorf("invalid schedule %q: want HH:MM or a cron spec: %w", s, err)
	}
	return s, nil
}

// New builds a scheduler for timeOrSpec in timezone ("" or "Local" for the
// machine's zone).
func New(timeOrSpec, timezone string, job Job, logger *slog.Logger) (*Scheduler, error) {
	spec, err := Spec(timeOrSpec)
	if err != nil {
		return nil, err
	}
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cl := cronLogger{logger}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		schedule: sched,
		spec:     spec,
		loc:      loc,
		logger:   logger,
		job:      job,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(spec, s.runJob); err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) runJob() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.logger.Info("scheduled run starting", "spec", s.spec)
	s.job(ctx)
}

// Next reports the first run time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

func (s *Scheduler) Spec() string { return s.spec }

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "tz", s.loc.String(), "next", s.Next(time.Now()))
}

// Stop halts the scheduler, cancels the running job's context and waits for
// it to return.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	<-done.Done()
	s.logger.Info("scheduler stopped")
}

// Run starts the scheduler and blocks until ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// cronLogger adapts slog to cron's logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
