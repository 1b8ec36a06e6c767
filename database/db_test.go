package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"skillboard/backend/migrations"
	"skillboard/backend/models"
	"skillboard/backend/security"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, Path: MemoryPath}, quietLogger())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.RunMigrations(db, quietLogger()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func candidates(t *testing.T) *models.Schema {
	t.Helper()
	schema, ok := models.LookupSchema(models.ResourceCandidates)
	if !ok {
		t.Fatal("Expected candidates schema")
	}
	return schema
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "mysql"}, quietLogger()); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestRecordRepositoryCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db, nil)
	schema := candidates(t)
	ctx := context.Background()

	input := []models.Record{
		{"id": "3", "name": "Alice Johnson", "status": "dropout"},
		{"id": "1", "name": "John Doe", "status": "active"},
		{"id": "2", "name": "Jane Smith", "status": "placed"},
	}
	for _, rec := range input {
		if err := repo.Insert(ctx, schema, rec); err != nil {
			t.Fatalf("Failed to insert record %s: %v", rec.ID(), err)
		}
	}

	if err := repo.Insert(ctx, schema, models.Record{"name": "No Id"}); err == nil {
		t.Error("Expected error inserting a record without id")
	}

	listed, err := repo.List(ctx, schema)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	var ids []string
	for _, rec := range listed {
		ids = append(ids, rec.ID())
	}
	if !reflect.DeepEqual(ids, []string{"3", "1", "2"}) {
		t.Errorf("Expected insertion order [3 1 2], got %v", ids)
	}

	if err := repo.Update(ctx, schema, models.Record{"id": "1", "name": "John Doe", "status": "placed"}); err != nil {
		t.Fatalf("Failed to update record: %v", err)
	}
	if err := repo.Update(ctx, schema, models.Record{"id": "missing", "name": "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating a missing record, got %v", err)
	}

	listed, _ = repo.List(ctx, schema)
	if listed[1]["status"] != "placed" {
		t.Errorf("Expected updated status 'placed', got %v", listed[1]["status"])
	}

	if err := repo.Delete(ctx, schema, "3"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}
	if err := repo.Delete(ctx, schema, "3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}

	count, err := repo.Count(ctx, models.ResourceCandidates)
	if err != nil || count != 2 {
		t.Errorf("Expected 2 records, got %d (%v)", count, err)
	}

	// Other resources are isolated
	users, _ := models.LookupSchema(models.ResourceUsers)
	others, err := repo.List(ctx, users)
	if err != nil || len(others) != 0 {
		t.Errorf("Expected no users, got %d (%v)", len(others), err)
	}
}

func TestRecordRepositoryInsertAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db, nil)
	schema := candidates(t)
	ctx := context.Background()

	err := repo.InsertAll(ctx, schema, []models.Record{
		{"id": "1", "name": "John Doe", "status": "active"},
		{"id": "2", "name": "Jane Smith", "status": "placed"},
		{"id": "1", "name": "John Again", "status": "active"},
	})
	if err == nil {
		t.Fatal("Expected error inserting a duplicate id")
	}
	if count, _ := repo.Count(ctx, models.ResourceCandidates); count != 0 {
		t.Errorf("Expected a failed batch to store nothing, got %d records", count)
	}

	err = repo.InsertAll(ctx, schema, []models.Record{
		{"id": "1", "name": "John Doe", "status": "active"},
		{"id": "2", "name": "Jane Smith", "status": "placed"},
	})
	if err != nil {
		t.Fatalf("Failed to insert batch: %v", err)
	}
	if count, _ := repo.Count(ctx, models.ResourceCandidates); count != 2 {
		t.Errorf("Expected 2 records, got %d", count)
	}
}

func TestRecordRepositorySealsSensitiveFields(t *testing.T) {
	db := setupTestDB(t)
	cipher, err := security.NewCipher("test-encryption-key-12345678901234")
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	repo := NewRecordRepository(db, cipher)
	schema := candidates(t)
	ctx := context.Background()

	rec := models.Record{"id": "1", "name": "John Doe", "phone": "9876543210", "status": "active"}
	if err := repo.Insert(ctx, schema, rec); err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}
	if rec["phone"] != "9876543210" {
		t.Error("Expected Insert to leave the caller's record untouched")
	}

	var data string
	if err := db.Get(&data, "SELECT data FROM records WHERE id = ?", "1"); err != nil {
		t.Fatalf("Failed to read raw record: %v", err)
	}
	if strings.Contains(data, "9876543210") {
		t.Errorf("Expected phone to be sealed at rest, got %s", data)
	}
	if !strings.Contains(data, security.SealedPrefix) {
		t.Errorf("Expected sealed marker in %s", data)
	}

	listed, err := repo.List(ctx, schema)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if listed[0]["phone"] != "9876543210" {
		t.Errorf("Expected phone to be opened on load, got %v", listed[0]["phone"])
	}

	// Plaintext written without a key stays readable once a key is configured
	plain := NewRecordRepository(db, nil)
	if err := plain.Insert(ctx, schema, models.Record{"id": "2", "name": "Jane", "phone": "1234567", "status": "placed"}); err != nil {
		t.Fatalf("Failed to insert plaintext record: %v", err)
	}
	listed, err = repo.List(ctx, schema)
	if err != nil || listed[1]["phone"] != "1234567" {
		t.Errorf("Expected plaintext passthrough, got %v (%v)", listed[1]["phone"], err)
	}

	// Sealed values cannot be read without the key
	if _, err := plain.List(ctx, schema); err == nil {
		t.Error("Expected error listing sealed records without a key")
	}
}

func TestConnectionString(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "app", Password: "s3cret", DBName: "skillboard", SSLMode: "disable"}

	got := cfg.ConnectionString()
	expected := "postgres://app:s3cret@db:5432/skillboard?sslmode=disable"
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}

	cfg.URL = "postgres://other:pw@cloud:5432/db"
	if cfg.ConnectionString() != cfg.URL {
		t.Errorf("Expected URL to take precedence, got %s", cfg.ConnectionString())
	}
}

func TestMaskPassword(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Password is masked", "postgres://app:s3cret@db:5432/skillboard?sslmode=disable", "postgres://app:xxxxx@db:5432/skillboard?sslmode=disable"},
		{"No password", "postgres://app@db:5432/skillboard", "postgres://app@db:5432/skillboard"},
		{"Not a URL", "host=db user=app", "host=db user=app"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskPassword(tc.input); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
