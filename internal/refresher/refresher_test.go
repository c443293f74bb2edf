package refresher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestegg/internal/logger"
	"nestegg/internal/services"
)

// countingPrices records refresh passes.
type countingPrices struct {
	runs atomic.Int32
}

func (c *countingPrices) RefreshAllPrices(ctx context.Context) (*services.PriceRefreshResult, error) {
	c.runs.Add(1)
	return &services.PriceRefreshResult{}, nil
}

func (c *countingPrices) RefreshUserPrices(ctx context.Context, userID string) (*services.PriceRefreshResult, error) {
	return &services.PriceRefreshResult{}, nil
}

func waitForRuns(t *testing.T, prices *countingPrices, want int32, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if prices.runs.Load() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least %d refresh runs within %s, got %d", want, within, prices.runs.Load())
}

func TestRefresherRunsImmediately(t *testing.T) {
	prices := &countingPrices{}
	r := New(prices, time.Hour, logger.Get())

	require.NoError(t, r.Start())
	defer r.Stop()

	// The first pass runs right away rather than waiting a full interval.
	waitForRuns(t, prices, 1, 2*time.Second)
}

func TestRefresherTicks(t *testing.T) {
	prices := &countingPrices{}
	r := New(prices, 50*time.Millisecond, logger.Get())

	require.NoError(t, r.Start())
	defer r.Stop()

	// Immediate run plus at least two scheduled ticks.
	waitForRuns(t, prices, 3, 3*time.Second)
}

func TestRefresherStop(t *testing.T) {
	prices := &countingPrices{}
	r := New(prices, 50*time.Millisecond, logger.Get())

	require.NoError(t, r.Start())
	waitForRuns(t, prices, 1, 2*time.Second)
	r.Stop()

	// After stopping, give any in-flight tick time to land, then check
	// the count stays put.
	time.Sleep(150 * time.Millisecond)
	after := prices.runs.Load()
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, after, prices.runs.Load())
}
