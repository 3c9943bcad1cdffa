// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	importhandler "github.com/enrollhub/onboarding-api/internal/domain/importer/handler"
)

// sessionMaxAge is how long an idle import session survives before the
// sweeper drops it.
const sessionMaxAge = 24 * time.Hour

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	store  *importhandler.SessionStore
	logger *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(store *importhandler.SessionStore, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		store:  store,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Session sweep: runs hourly
	_, err := s.cron.AddFunc("0 * * * *", s.sweepSessions)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the session sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepSessions()
}

// sweepSessions drops import sessions idle past their lifetime.
func (s *Scheduler) sweepSessions() {
	removed := s.store.Sweep(sessionMaxAge)
	if removed > 0 {
		s.logger.Info("swept abandoned import sessions",
			slog.Int("removed", removed),
			slog.Int("remaining", s.store.Len()),
		)
		return
	}
	s.logger.Debug("session sweep found nothing to remove",
		slog.Int("live", s.store.Len()),
	)
}
