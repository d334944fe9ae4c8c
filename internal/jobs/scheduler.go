// Package jobs runs the recurring maintenance work: evicting idle editor
// sessions and expiring stale book-download entitlements.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/storage"
)

// Dependencies are the collaborators the scheduled jobs act on.
type Dependencies struct {
	Sessions *editor.Manager
	Orders   storage.OrderStore
	Metrics  *observability.Metrics
	Log      *zap.Logger
}

// Scheduler owns the cron loop. Jobs themselves are methods so tests can run
// them without waiting on the schedule.
type Scheduler struct {
	cron *cron.Cron
	deps Dependencies
}

// NewScheduler registers the maintenance jobs on the configured schedules.
func NewScheduler(cfg config.JobsConfig, deps Dependencies) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		deps: deps,
	}

	if _, err := s.cron.AddFunc(cfg.SessionSweepSpec, s.SweepSessions); err != nil {
		return nil, fmt.Errorf("jobs: invalid session sweep schedule %q: %w", cfg.SessionSweepSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.DownloadExpirySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.ExpireDownloads(ctx)
	}); err != nil {
		return nil, fmt.Errorf("jobs: invalid download expiry schedule %q: %w", cfg.DownloadExpirySpec, err)
	}
	return s, nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SweepSessions evicts idle editor sessions and refreshes the active-session
// gauge.
func (s *Scheduler) SweepSessions() {
	evicted := s.deps.Sessions.Sweep()
	if evicted > 0 {
		s.deps.Log.Info("evicted idle editor sessions", zap.Int("evicted", evicted))
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.SetEditorSessions(float64(s.deps.Sessions.Len()))
	}
}

// ExpireDownloads clears download entitlements on orders past their expiry.
func (s *Scheduler) ExpireDownloads(ctx context.Context) {
	expired, err := s.deps.Orders.ExpireDownloads(ctx, time.Now().UTC())
	if err != nil {
		s.deps.Log.Error("download expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.deps.Log.Info("expired book download links", zap.Int("orders", expired))
	}
}
