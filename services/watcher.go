package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// DatasetWatcher reloads a resource's table whenever its dataset file changes.
type DatasetWatcher struct {
	datasets *DatasetStore
	records  *RecordService
	logger   *slog.Logger
}

// NewDatasetWatcher creates a watcher over the dataset directory.
func NewDatasetWatcher(datasets *DatasetStore, records *RecordService, logger *slog.Logger) *DatasetWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetWatcher{datasets: datasets, records: records, logger: logger}
}

// Run watches until ctx is cancelled. ready, when non-nil, is closed once the
// directory is being watched.
func (w *DatasetWatcher) Run(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warn("failed to close watcher", "error", err)
		}
	}()

	if err := watcher.Add(w.datasets.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.datasets.Dir(), err)
	}
	w.logger.Info("watching datasets", "dir", w.datasets.Dir())
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *DatasetWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	resource := w.datasets.ResourceFor(event.Name)
	if resource == "" {
		return
	}

	w.logger.Info("dataset changed, reloading", "resource", resource, "op", event.Op.String())
	if err := w.records.Reload(ctx, resource); err != nil {
		w.logger.Error("failed to reload dataset", "resource", resource, "error", err)
	}
}
