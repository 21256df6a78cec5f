package nav

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"nav-tracker/internal/fetcher"
)

// stubQuoter returns a fixed value or error for any symbol.
type stubQuoter struct {
	value float64
	err   error
}

func (s *stubQuoter) LatestClose(ctx context.Context, symbol string) (float64, error) {
	return s.value, s.err
}

func (s *stubQuoter) Name() string { return "stub" }

func TestEstimate_ZeroNoiseIsExactScaling(t *testing.T) {
	a := New(&stubQuoter{value: 5000}, "^GSPC", 0.1, 0)

	got, err := a.Estimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500.0 {
		t.Fatalf("expected exactly 500.0, got %v", got)
	}
}

func TestEstimate_NoiseStaysSmall(t *testing.T) {
	a := New(&stubQuoter{value: 5000}, "^GSPC", 0.1, 0.001,
		WithRand(rand.New(rand.NewSource(42))))

	// 1000 draws at stddev 0.001 should all land within 1% of the base.
	for i := 0; i < 1000; i++ {
		got, err := a.Estimate(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-500.0) > 5.0 {
			t.Fatalf("draw %d: estimate %v deviates more than 1%% from 500", i, got)
		}
	}
}

func TestEstimate_NoiseVariesPerCall(t *testing.T) {
	a := New(&stubQuoter{value: 5000}, "^GSPC", 0.1, 0.001,
		WithRand(rand.New(rand.NewSource(1))))

	first, _ := a.Estimate(context.Background())
	second, _ := a.Estimate(context.Background())
	if first == second {
		t.Fatal("expected noise to be regenerated on each call")
	}
}

func TestEstimate_FetchErrorPassesThrough(t *testing.T) {
	a := New(&stubQuoter{err: fetcher.ErrNoData}, "^GSPC", 0.1, 0.001)

	_, err := a.Estimate(context.Background())
	if !errors.Is(err, fetcher.ErrNoData) {
		t.Fatalf("expected ErrNoData to pass through, got %v", err)
	}
}
