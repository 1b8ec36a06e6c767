package services

import (
	"context"
	"log/slog"
	"time"
)

// Refresher periodically reloads every table so writes made by other
// processes become visible.
type Refresher struct {
	records  *RecordService
	interval time.Duration
	logger   *slog.Logger
}

// NewRefresher creates a refresher. A non-positive interval disables it.
func NewRefresher(records *RecordService, interval time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{records: records, interval: interval, logger: logger}
}

// Run reloads on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	r.logger.Info("starting table refresher", "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("table refresher stopped")
			return
		case <-ticker.C:
			if err := r.records.ReloadAll(ctx); err != nil {
				r.logger.Error("scheduled reload failed", "error", err)
			}
		}
	}
}
