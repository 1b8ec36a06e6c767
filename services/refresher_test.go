package services

import (
	"context"
	"testing"
	"time"

	"skillboard/backend/models"
)

func TestRefresherPicksUpStoreChanges(t *testing.T) {
	svc, store := loadedRecordService(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRefresher(svc, 10*time.Millisecond, quietLogger()).Run(ctx)
		close(done)
	}()

	store.set(models.ResourceCandidates, append(sampleCandidates(),
		models.Record{"id": "4", "name": "Ravi Kumar", "status": "migrated"}))

	refreshed := waitFor(t, 5*time.Second, func() bool {
		view, err := svc.View(models.ResourceCandidates, models.Criteria{}, models.Page{})
		return err == nil && view.Total == 4
	})
	if !refreshed {
		t.Error("Expected the refresher to load the new record")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("Timed out waiting for refresher to stop")
	}
}

func TestRefresherDisabled(t *testing.T) {
	svc, _ := loadedRecordService(t)

	done := make(chan struct{})
	go func() {
		NewRefresher(svc, 0, quietLogger()).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected a disabled refresher to return immediately")
	}
}
