// Package scheduler runs periodic jobs on a cron expression while the server
// is up.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. Its context is cancelled on shutdown.
type Job func(ctx context.Context) error

// Scheduler runs a single named job on a standard five-field cron spec.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	entryID  cron.EntryID
	name     string
	logger   *slog.Logger

	// ctx is handed to job runs; Run replaces it before starting the loop.
	ctx context.Context
}

// New parses spec in timezone and prepares job. Runs that would overlap a
// still-running one are skipped.
func New(name, spec, timezone string, job Job, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load timezone %q: %w", timezone, err)
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		location: loc,
		name:     name,
		logger:   logger,
		ctx:      context.Background(),
	}
	return s, s.add(spec, job)
}

func (s *Scheduler) add(spec string, job Job) error {
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.logger.Info("scheduler: job started", slog.String("job", s.name))
		if err := job(s.ctx); err != nil {
			s.logger.Error("scheduler: job failed", slog.String("job", s.name), slog.String("error", err.Error()))
			return
		}
		s.logger.Info("scheduler: job finished", slog.String("job", s.name), slog.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("scheduler: add %q: %w", spec, err)
	}
	s.entryID = id
	return nil
}

// Next returns the next planned run, or the zero time before Run starts.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Run starts the cron loop and blocks until ctx is done, then waits for a
// running job to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler: started", slog.String("job", s.name), slog.Time("next", s.Next()))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped", slog.String("job", s.name))
	return nil
}
