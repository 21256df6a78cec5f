// Package nav derives an approximate net asset value for the tracked ETF
// from its benchmark index.
//
// This is explicitly NOT a real NAV computation. A true NAV depends on the
// fund's holdings, cash positions, and accrued costs, none of which are
// available here. The estimate is the index value scaled by the fund's
// historical index ratio, plus a small Gaussian noise term that stands in
// for those unmodeled factors — without it the line would render flat and
// quantized between index updates.
package nav

import (
	"context"
	"math/rand"
	"time"

	"nav-tracker/internal/fetcher"
)

// Approximator estimates the ETF's NAV from a benchmark index quote.
type Approximator struct {
	quoter        fetcher.Quoter
	indexSymbol   string
	scalingFactor float64
	noiseStdDev   float64
	rng           *rand.Rand
}

// Option configures an Approximator.
type Option func(*Approximator)

// WithRand replaces the noise source. Tests pin this for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(a *Approximator) { a.rng = rng }
}

// New creates an Approximator. scalingFactor maps the index level to the
// fund's share price (SPY trades near 1/10 of the S&P 500 level, so ~0.1).
// noiseStdDev is the relative standard deviation of the noise term; zero
// disables noise entirely.
func New(quoter fetcher.Quoter, indexSymbol string, scalingFactor, noiseStdDev float64, opts ...Option) *Approximator {
	a := &Approximator{
		quoter:        quoter,
		indexSymbol:   indexSymbol,
		scalingFactor: scalingFactor,
		noiseStdDev:   noiseStdDev,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Estimate fetches the latest index close and returns
// index * scalingFactor * (1 + noise), noise ~ N(0, noiseStdDev),
// drawn fresh on every call. Fetch failures pass through unwrapped so
// callers can distinguish empty results from transport errors.
func (a *Approximator) Estimate(ctx context.Context) (float64, error) {
	indexValue, err := a.quoter.LatestClose(ctx, a.indexSymbol)
	if err != nil {
		return 0, err
	}

	approx := indexValue * a.scalingFactor
	if a.noiseStdDev > 0 {
		approx *= 1 + a.rng.NormFloat64()*a.noiseStdDev
	}
	return approx, nil
}

// IndexSymbol returns the benchmark symbol this approximator quotes.
func (a *Approximator) IndexSymbol() string { return a.indexSymbol }
