// Package model defines the core data types shared across the tracker.
package model

import (
	"encoding/json"
	"time"
)

// Sample is one observation of the tracked ETF: its traded price, the
// approximate NAV derived from the benchmark index, and their difference.
// Difference is always Price - NAV; it is computed at construction and
// never set independently. A Sample is immutable once created.
type Sample struct {
	TS         time.Time `json:"ts"`         // observation time (UTC)
	Price      float64   `json:"price"`      // latest traded price
	NAV        float64   `json:"nav"`        // approximate net asset value
	Difference float64   `json:"difference"` // Price - NAV
}

// NewSample constructs a Sample, deriving the difference.
func NewSample(ts time.Time, price, nav float64) Sample {
	return Sample{
		TS:         ts.UTC(),
		Price:      price,
		NAV:        nav,
		Difference: price - nav,
	}
}

// DifferencePct returns the difference as a percentage of NAV.
// Returns 0 when NAV is zero.
func (s Sample) DifferencePct() float64 {
	if s.NAV == 0 {
		return 0
	}
	return s.Difference / s.NAV * 100
}

// JSON returns the JSON-encoded sample (ignoring errors for hot-path usage).
func (s *Sample) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
