package tracker

import (
	"time"

	"nav-tracker/internal/model"
)

// RecentTableSize is how many rows the dashboard's tracking table shows.
const RecentTableSize = 15

// Direction classifies a signed value for conditional styling.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
	DirFlat Direction = "flat"
)

func direction(v float64) Direction {
	switch {
	case v > 0:
		return DirUp
	case v < 0:
		return DirDown
	default:
		return DirFlat
	}
}

// TableRow is one row of the recent-history table: a sample augmented with
// its change versus the immediately older row in the displayed slice.
// Change fields are nil on the oldest displayed row, which has no
// predecessor inside the slice even when the buffer holds older samples.
type TableRow struct {
	TS         time.Time `json:"ts"`
	Price      float64   `json:"price"`
	PrevPrice  *float64  `json:"prevPrice,omitempty"`
	Change     *float64  `json:"change,omitempty"`
	ChangePct  *float64  `json:"changePct,omitempty"`
	NAV        float64   `json:"nav"`
	Difference float64   `json:"difference"`

	// Per-column styling directions, independent of each other.
	ChangeDir     Direction `json:"changeDir"`
	ChangePctDir  Direction `json:"changePctDir"`
	DifferenceDir Direction `json:"differenceDir"`
}

// RecentRows returns up to n rows, newest first, with one-step-lag deltas
// computed within the returned slice.
func (t *Tracker) RecentRows(n int) []TableRow {
	samples := t.buf.Tail(n)
	rows := make([]TableRow, 0, len(samples))

	// Walk newest to oldest; the predecessor of samples[i] is samples[i-1].
	for i := len(samples) - 1; i >= 0; i-- {
		row := rowFromSample(samples[i])
		if i > 0 {
			prev := samples[i-1].Price
			change := samples[i].Price - prev
			changePct := 0.0
			if prev != 0 {
				changePct = change / prev * 100
			}
			row.PrevPrice = &prev
			row.Change = &change
			row.ChangePct = &changePct
			row.ChangeDir = direction(change)
			row.ChangePctDir = direction(changePct)
		}
		rows = append(rows, row)
	}
	return rows
}

func rowFromSample(s model.Sample) TableRow {
	return TableRow{
		TS:            s.TS,
		Price:         s.Price,
		NAV:           s.NAV,
		Difference:    s.Difference,
		ChangeDir:     DirFlat,
		ChangePctDir:  DirFlat,
		DifferenceDir: direction(s.Difference),
	}
}
