/*
scheduler.go - Periodic recalculation of monthly sales rows

PURPOSE:
  Rebuilds every deal item's monthly rows on a fixed interval, so rows
  written by an older build or edited by hand converge back to the
  proration of their item.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Runs once immediately on Start
  - One failing item is logged and does not stop the run
  - Flushes the handler's report cache after each run

CONFIGURATION:
  - CheckInterval: How often to run (RECALC_INTERVAL)
  - Enabled: false when the interval is zero

USAGE:
  scheduler := NewRecalculationScheduler(handler, interval, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: POST /api/batch/recalculate-all (manual run)
  - revenue/recalculate.go: RecalculateAll
*/
package api

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/revenue-engine/revenue"
)

// RecalculationScheduler runs RecalculateAll in the background.
type RecalculationScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool
	Logger        *slog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	// guards lastRun; separate from mu so Stop can wait on a running pass
	runMu   sync.Mutex
	lastRun time.Time
}

// NewRecalculationScheduler creates a scheduler; a zero interval leaves it disabled.
func NewRecalculationScheduler(handler *Handler, interval time.Duration, logger *slog.Logger) *RecalculationScheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RecalculationScheduler{
		Handler:       handler,
		CheckInterval: interval,
		Enabled:       interval > 0,
		Logger:        logger.With("component", "scheduler"),
	}
}

// Start begins the scheduler.
func (rs *RecalculationScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs.cancel = cancel
	rs.stop = make(chan struct{})
	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run(ctx)

	rs.Logger.Info("started", "interval", rs.CheckInterval)
}

// Stop cancels an in-flight run and waits for the goroutine to exit.
func (rs *RecalculationScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	rs.cancel()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	rs.Logger.Info("stopped")
}

func (rs *RecalculationScheduler) run(ctx context.Context) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(ctx)

	for {
		select {
		case <-rs.ticker.C:
			rs.RunNow(ctx)
		case <-rs.stop:
			return
		}
	}
}

// RunNow performs one recalculation pass and returns its summary.
func (rs *RecalculationScheduler) RunNow(ctx context.Context) (revenue.RecalcSummary, error) {
	started := time.Now()
	summary, err := rs.Handler.Recalculator.RecalculateAll(ctx)
	rs.Handler.InvalidateReports()

	rs.runMu.Lock()
	rs.lastRun = started
	rs.runMu.Unlock()

	if err != nil {
		rs.Logger.Error("recalculation run failed", "error", err)
		return summary, err
	}
	if summary.Processed > 0 || len(summary.Failed) > 0 {
		rs.Logger.Info("recalculation run completed",
			"processed", summary.Processed,
			"failed", len(summary.Failed),
			"duration", time.Since(started),
		)
	}
	return summary, nil
}

// GetNextRunTime returns when the next scheduled run will occur.
func (rs *RecalculationScheduler) GetNextRunTime() time.Time {
	rs.runMu.Lock()
	defer rs.runMu.Unlock()

	if rs.lastRun.IsZero() {
		return time.Now().Add(rs.CheckInterval)
	}
	return rs.lastRun.Add(rs.CheckInterval)
}
