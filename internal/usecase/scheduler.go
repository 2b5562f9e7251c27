package usecase

import (
	"context"
	"log/slog"
	"time"

	"FRELookup/internal/ports"
)

// Maintenance wires the ticker driver with cache refresh and session sweeping.
type Maintenance struct {
	driver      ports.Scheduler
	reloader    Invalidator
	sessions    *Sessions
	sessionIdle time.Duration
	logger      *slog.Logger
}

// NewMaintenance returns a helper to start/stop the recurring refresh.
func NewMaintenance(driver ports.Scheduler, reloader Invalidator, sessions *Sessions, sessionIdle time.Duration, log *slog.Logger) *Maintenance {
	return &Maintenance{
		driver:      driver,
		reloader:    reloader,
		sessions:    sessions,
		sessionIdle: sessionIdle,
		logger:      log,
	}
}

// Start registers the refresh job with the provided scheduler.
func (m *Maintenance) Start(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}
	return m.driver.Start(ctx, m.Run)
}

// Run performs one refresh pass.
func (m *Maintenance) Run(trigger time.Time) {
	if m.reloader != nil {
		m.reloader.Invalidate()
	}
	swept := 0
	if m.sessions != nil && m.sessionIdle > 0 {
		swept = m.sessions.Sweep(m.sessionIdle)
	}
	if m.logger != nil {
		m.logger.Debug("maintenance pass", "at", trigger.Format(time.RFC3339), "sessions_swept", swept)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (m *Maintenance) Stop(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}

	return m.driver.Stop(ctx)
}
