// Package scheduler drives the tracker's polling loop. A single goroutine
// ticks at a fixed interval and invokes one aggregation attempt per tick;
// successful appends are pushed to sinks (the WebSocket hub, the optional
// Redis mirror). Fetch cadence is fully decoupled from render cadence —
// clients render when data is pushed to them, not on a rerun timer.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nav-tracker/internal/fetcher"
	"nav-tracker/internal/markethours"
	"nav-tracker/internal/model"
	"nav-tracker/internal/tracker"
)

// Sink receives each newly appended sample.
type Sink interface {
	Notify(ctx context.Context, s model.Sample)
}

// Scheduler runs the polling loop.
type Scheduler struct {
	tracker  *tracker.Tracker
	interval time.Duration
	sinks    []Sink

	// marketClosedLogged suppresses repeated closed-market log lines.
	marketClosedLogged bool
}

// New creates a Scheduler. interval is the tick cadence; the effective
// sample rate is additionally gated by the tracker's min update interval.
func New(tr *tracker.Tracker, interval time.Duration, sinks ...Sink) *Scheduler {
	return &Scheduler{
		tracker:  tr,
		interval: interval,
		sinks:    sinks,
	}
}

// Run blocks until ctx is cancelled, attempting one tick per interval.
// Cadence is best-effort: a tick's fetches run to completion before the
// next tick fires, so the actual period is the interval plus whatever the
// fetches cost.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler started",
		"interval", s.interval,
		"symbol", s.tracker.Symbol(),
		"index", s.tracker.IndexSymbol(),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First tick immediately; the dashboard should not wait a full
	// interval for its first sample.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	s.logMarketState(now)

	updated, err := s.tracker.Tick(ctx, now)
	if err != nil {
		// Every failure is treated as transient; the next tick is the
		// retry. No sample was recorded for this tick.
		kind := "transport"
		if errors.Is(err, fetcher.ErrNoData) {
			kind = "empty"
		}
		slog.Warn("tick skipped, no sample recorded", "kind", kind, "err", err)
		return
	}
	if !updated {
		return
	}

	if sample, ok := s.tracker.Latest(); ok {
		for _, sink := range s.sinks {
			sink.Notify(ctx, sample)
		}
	}
}

// logMarketState logs the closed/open transition once per change. Polling
// continues while closed: the upstream serves the last session's close,
// which keeps the chart alive at a flat price.
func (s *Scheduler) logMarketState(now time.Time) {
	open := markethours.IsMarketOpen(now)
	if !open && !s.marketClosedLogged {
		slog.Info("market closed, tracking last session close", "status", markethours.StatusString(now))
		s.marketClosedLogged = true
	}
	if open && s.marketClosedLogged {
		slog.Info("market open")
		s.marketClosedLogged = false
	}
}
