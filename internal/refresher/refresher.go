// Package refresher runs the periodic stock price refresh. It is a
// cancellable scheduled task with an explicit start/stop lifecycle tied
// to the server's: one immediate pass after startup, then one pass per
// interval until stopped.
package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"nestegg/internal/services"
)

const runTimeout = 45 * time.Second

// Refresher periodically refreshes stock prices via the price service.
type Refresher struct {
	prices   services.PriceServicer
	interval time.Duration
	cron     *cron.Cron
	log      *zap.SugaredLogger
}

// New creates a Refresher that runs every interval.
func New(prices services.PriceServicer, interval time.Duration, log *zap.SugaredLogger) *Refresher {
	return &Refresher{
		prices:   prices,
		interval: interval,
		cron:     cron.New(),
		log:      log,
	}
}

// Start schedules the refresh loop and kicks off an immediate first run.
func (r *Refresher) Start() error {
	if err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), r.runOnce); err != nil {
		return fmt.Errorf("scheduling price refresh: %w", err)
	}
	r.cron.Start()
	go r.runOnce()
	r.log.Infow("price refresher started", "interval", r.interval.String())
	return nil
}

// Stop cancels the schedule. In-flight runs finish on their own; no new
// runs start afterwards.
func (r *Refresher) Stop() {
	r.cron.Stop()
	r.log.Info("price refresher stopped")
}

// runOnce executes a single refresh pass. Failures are logged and
// dropped; the next tick simply tries again.
func (r *Refresher) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := r.prices.RefreshAllPrices(ctx)
	if err != nil {
		r.log.Warnw("price refresh pass failed", "error", err.Error())
		return
	}

	r.log.Infow("price refresh pass completed",
		"stocks_matched", result.StocksMatched,
		"prices_applied", result.PricesApplied,
		"snapshots_recorded", result.SnapshotsRecorded,
		"failed", len(result.Failed),
	)
}
