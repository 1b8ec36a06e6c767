package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"skillboard/backend/middleware"
	"skillboard/backend/models"
	"skillboard/backend/services"
)

// Handler serves the dashboard API.
type Handler struct {
	records *services.RecordService
	filters *services.FilterService
	reports *services.ReportService
	logger  *slog.Logger
}

// New creates the API handlers.
func New(records *services.RecordService, filters *services.FilterService, reports *services.ReportService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{records: records, filters: filters, reports: reports, logger: logger}
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Validation failures are
// reported field by field.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, services.ErrUnknownResource), errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "Forbidden: You do not have permission to access this resource", http.StatusForbidden)
	case errors.Is(err, services.ErrReadOnly):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeBody parses a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// currentUser returns the requesting user, answering 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSchemas returns the declared schemas of every resource.
func (h *Handler) GetSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Schemas())
}

// GetSchema returns the schema of one resource.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.records.Schema(mux.Vars(r)["resource"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
