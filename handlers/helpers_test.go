package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"skillboard/backend/database"
	"skillboard/backend/middleware"
	"skillboard/backend/migrations"
	"skillboard/backend/models"
	"skillboard/backend/records"
	"skillboard/backend/services"
)

// Define a constant for the test user ID that can be used across all tests
const TestUserID = "test-user-id"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	router  *mux.Router
	records *services.RecordService
}

// newTestEnv serves the API over an in-memory database holding the sample
// candidates. Requests run as TestUserID unless they carry X-Test-User.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := quietLogger()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: database.MemoryPath}, logger)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.RunMigrations(db, logger); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo := database.NewRecordRepository(db, nil)
	schema, _ := models.LookupSchema(models.ResourceCandidates)
	for _, rec := range sampleCandidates() {
		if err := repo.Insert(context.Background(), schema, rec); err != nil {
			t.Fatalf("Failed to insert candidate: %v", err)
		}
	}

	validator := services.NewValidator()
	recordService := services.NewRecordService(repo, records.NewCatalog(models.Schemas()), validator, nil, logger)
	if err := recordService.ReloadAll(context.Background()); err != nil {
		t.Fatalf("Failed to load records: %v", err)
	}

	h := New(recordService, services.NewFilterService(db, validator), services.NewReportService(db, recordService), logger)
	r := mux.NewRouter()
	h.RegisterRoutes(r, testAuth)
	return &testEnv{router: r, records: recordService}
}

func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := TestUserID
		if u := r.Header.Get("X-Test-User"); u != "" {
			userID = u
		}
		ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sampleCandidates() []models.Record {
	return []models.Record{
		{"id": "1", "name": "John Doe", "status": "active", "course": "Welding", "center": "Pune"},
		{"id": "2", "name": "Jane Smith", "status": "placed", "course": "Retail", "center": "Delhi"},
		{"id": "3", "name": "Alice Johnson", "status": "dropout", "course": "Retail", "center": "Pune"},
	}
}

// do sends a request, JSON-encoding body when it is not nil.
func (e *testEnv) do(t *testing.T, method, url string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func recordIDs(rs []models.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID())
	}
	return out
}
