package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"skillboard/backend/database"
	"skillboard/backend/migrations"
	"skillboard/backend/models"
	"skillboard/backend/records"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: database.MemoryPath}, quietLogger())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.RunMigrations(db, quietLogger()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// memStore is an in-memory RecordStore with failure injection.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]models.Record
	listErr error
	saveErr error
}

func newMemStore(data map[string][]models.Record) *memStore {
	if data == nil {
		data = map[string][]models.Record{}
	}
	return &memStore{data: data}
}

func (m *memStore) List(_ context.Context, schema *models.Schema) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Record, 0, len(m.data[schema.Resource]))
	for _, r := range m.data[schema.Resource] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, schema *models.Schema, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[schema.Resource] = append(m.data[schema.Resource], rec.Clone())
	return nil
}

func (m *memStore) Update(_ context.Context, schema *models.Schema, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for i, r := range m.data[schema.Resource] {
		if r.ID() == rec.ID() {
			m.data[schema.Resource][i] = rec.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) Delete(_ context.Context, schema *models.Schema, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	rows := m.data[schema.Resource]
	for i, r := range rows {
		if r.ID() == id {
			m.data[schema.Resource] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) set(resource string, rs []models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[resource] = rs
}

func sampleCandidates() []models.Record {
	return []models.Record{
		{"id": "1", "name": "John Doe", "status": "active", "course": "Welding", "center": "Pune"},
		{"id": "2", "name": "Jane Smith", "status": "placed", "course": "Retail", "center": "Delhi"},
		{"id": "3", "name": "Alice Johnson", "status": "dropout", "course": "Retail", "center": "Pune"},
	}
}

func newTestRecordService(t *testing.T, store RecordStore) *RecordService {
	t.Helper()
	svc := NewRecordService(store, records.NewCatalog(models.Schemas()), NewValidator(), nil, quietLogger())
	return svc
}

func loadedRecordService(t *testing.T) (*RecordService, *memStore) {
	t.Helper()
	store := newMemStore(map[string][]models.Record{models.ResourceCandidates: sampleCandidates()})
	svc := newTestRecordService(t, store)
	if err := svc.ReloadAll(context.Background()); err != nil {
		t.Fatalf("Failed to load records: %v", err)
	}
	return svc, store
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected a ValidationError, got %v", err)
	}
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}
