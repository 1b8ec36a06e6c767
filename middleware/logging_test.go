package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"skillboard/backend/metrics"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/resources/candidates/records", nil))

	line := buf.String()
	for _, want := range []string{"level=ERROR", "method=GET", "path=/resources/candidates/records", "status=500"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected log line to contain %q, got %q", want, line)
		}
	}
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	m := metrics.New()

	r := mux.NewRouter()
	r.Use(Instrument(m))
	r.HandleFunc("/resources/{resource}/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	for _, path := range []string{"/resources/candidates/records/1", "/resources/users/records/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	want := `skillboard_http_requests_total{code="404",method="GET",route="/resources/{resource}/records/{id}"} 2`
	if !strings.Contains(rr.Body.String(), want) {
		t.Errorf("Expected %q in metrics output", want)
	}
}
