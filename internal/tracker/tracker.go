// Package tracker owns the tracking session: it polls the price and NAV
// sources, aggregates them into samples, and maintains the rolling buffer.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nav-tracker/internal/fetcher"
	"nav-tracker/internal/metrics"
	"nav-tracker/internal/model"
	"nav-tracker/internal/nav"
	"nav-tracker/internal/ringbuf"
)

// DefaultMinInterval is the minimum time between two appended samples.
const DefaultMinInterval = time.Second

// Tracker combines one price quote and one NAV estimate per tick into a
// Sample and appends it to the rolling buffer. The buffer and last-update
// timestamp live here, constructed explicitly and torn down with the
// session; nothing outside the Tracker mutates them.
type Tracker struct {
	quoter fetcher.Quoter
	symbol string
	approx *nav.Approximator
	buf    *ringbuf.Ring

	mu          sync.Mutex
	lastUpdate  time.Time
	minInterval time.Duration

	mx *metrics.Metrics // optional
}

// New creates a Tracker. mx may be nil when metrics are not wanted (tests).
func New(quoter fetcher.Quoter, symbol string, approx *nav.Approximator, buf *ringbuf.Ring, minInterval time.Duration, mx *metrics.Metrics) *Tracker {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Tracker{
		quoter:      quoter,
		symbol:      symbol,
		approx:      approx,
		buf:         buf,
		minInterval: minInterval,
		mx:          mx,
	}
}

// Tick attempts one aggregation step at the given time.
//
// If less than the minimum interval has passed since the last appended
// sample, the tick is a no-op and returns false. Otherwise the price and
// NAV are fetched sequentially; if either fails, no sample is recorded,
// the tick counts as "not updated", and the error is returned for the
// caller to log — the next tick is the implicit retry. A skipped tick
// widens the time gap before the next successful sample; that is accepted,
// not corrected.
func (t *Tracker) Tick(ctx context.Context, now time.Time) (bool, error) {
	if t.mx != nil {
		t.mx.TicksTotal.Inc()
	}

	t.mu.Lock()
	if now.Sub(t.lastUpdate) < t.minInterval {
		t.mu.Unlock()
		if t.mx != nil {
			t.mx.TicksSkipped.Inc()
		}
		return false, nil
	}
	t.mu.Unlock()

	price, err := t.fetchPrice(ctx)
	if err != nil {
		return false, fmt.Errorf("price fetch: %w", err)
	}

	navValue, err := t.fetchNAV(ctx)
	if err != nil {
		return false, fmt.Errorf("nav estimate: %w", err)
	}

	evicted := t.buf.Append(model.NewSample(now, price, navValue))

	t.mu.Lock()
	t.lastUpdate = now
	t.mu.Unlock()

	if t.mx != nil {
		t.mx.SamplesTotal.Inc()
		t.mx.BufferLength.Set(float64(t.buf.Len()))
		if evicted {
			t.mx.BufferEvictions.Inc()
		}
	}
	slog.Debug("sample appended",
		"symbol", t.symbol,
		"price", price,
		"nav", navValue,
		"difference", price-navValue,
	)
	return true, nil
}

func (t *Tracker) fetchPrice(ctx context.Context) (float64, error) {
	start := time.Now()
	price, err := t.quoter.LatestClose(ctx, t.symbol)
	t.observeFetch("price", start, err)
	return price, err
}

func (t *Tracker) fetchNAV(ctx context.Context) (float64, error) {
	start := time.Now()
	navValue, err := t.approx.Estimate(ctx)
	t.observeFetch("index", start, err)
	return navValue, err
}

func (t *Tracker) observeFetch(source string, start time.Time, err error) {
	if t.mx == nil {
		return
	}
	t.mx.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := "transport"
		if errors.Is(err, fetcher.ErrNoData) {
			kind = "empty"
		}
		t.mx.FetchErrors.WithLabelValues(source, kind).Inc()
	}
}

// ForceRefresh rewinds the last-update timestamp so the next tick bypasses
// the interval gate. This backs the dashboard's Force Refresh button.
func (t *Tracker) ForceRefresh() {
	t.mu.Lock()
	t.lastUpdate = time.Time{}
	t.mu.Unlock()
}

// LastUpdate returns when the buffer was last appended to.
// Zero when no sample has been recorded yet.
func (t *Tracker) LastUpdate() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUpdate
}

// Symbol returns the tracked instrument symbol.
func (t *Tracker) Symbol() string { return t.symbol }

// IndexSymbol returns the benchmark symbol behind the NAV estimate.
func (t *Tracker) IndexSymbol() string { return t.approx.IndexSymbol() }

// Snapshot returns the full buffer contents, oldest first.
func (t *Tracker) Snapshot() []model.Sample { return t.buf.Snapshot() }

// Latest returns the most recent sample, ok=false when the buffer is empty.
func (t *Tracker) Latest() (model.Sample, bool) { return t.buf.Last() }

// BufferLen returns the current buffer length.
func (t *Tracker) BufferLen() int { return t.buf.Len() }

// BufferCap returns the buffer capacity.
func (t *Tracker) BufferCap() int { return t.buf.Cap() }
