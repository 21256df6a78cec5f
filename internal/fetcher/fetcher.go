// Package fetcher retrieves market data from an upstream quote source.
package fetcher

import (
	"context"
	"errors"
)

// ErrNoData indicates the upstream responded successfully but returned no
// usable rows for the requested symbol. Callers treat it the same as a
// transport error: skip the tick and retry on the next one.
var ErrNoData = errors.New("fetcher: no data returned")

// Quoter fetches the most recent 1-minute close for a symbol on the
// current trading day.
type Quoter interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
	Name() string
}
