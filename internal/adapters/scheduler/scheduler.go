// Package scheduler runs periodic jobs (feed refresh, session sweep) on cron
// specs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. A run that is still going when
// its next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	ids  map[string]cron.EntryID
}

// New creates a scheduler that evaluates specs in loc.
// PRE: loc is non-nil
func New(loc *time.Location) *Scheduler {
	logger := slogAdapter{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ids: make(map[string]cron.EntryID),
	}
}

// Add registers job under name. Each run gets a context bounded by timeout.
// Specs use the five-field form or descriptors such as "@every 30m".
// PRE: name is unique
// POST: job runs on spec once Start is called
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	if _, dup := s.ids[name]; dup {
		return fmt.Errorf("job %q already scheduled", name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		s.run(name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.ids[name] = id
	return nil
}

// RunNow executes a registered job immediately on the calling goroutine,
// outside the cron timetable. It goes through the same chain as timetabled
// runs, so it never overlaps a tick of the same job.
func (s *Scheduler) RunNow(name string) error {
	id, ok := s.ids[name]
	if !ok {
		return fmt.Errorf("job %q not scheduled", name)
	}
	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// Next reports when name will next run; zero before Start.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.ids[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler_started", "jobs", len(s.ids))
}

// Stop halts the timetable and waits up to ctx for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("scheduler_stopped")
	case <-ctx.Done():
		slog.Warn("scheduler_stop_timeout")
	}
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	if err := job(ctx); err != nil {
		slog.Error("job_failed", "job", name, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.Debug("job_completed", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// slogAdapter lets cron report through slog.
type slogAdapter struct{}

func (slogAdapter) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron_"+msg, keysAndValues...)
}

func (slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron_"+msg, append([]any{"error", err}, keysAndValues...)...)
}
