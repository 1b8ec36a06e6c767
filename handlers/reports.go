package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"skillboard/backend/services"
)

// GetCustomReports returns the reports the current user can read: their own
// and every public one
func (h *Handler) GetCustomReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	reports, err := h.reports.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GetCustomReport returns a specific custom report
func (h *Handler) GetCustomReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Get(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CreateCustomReport creates a new custom report
func (h *Handler) CreateCustomReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request services.CustomReportInput
	if !decodeBody(w, r, &request) {
		return
	}

	report, err := h.reports.Create(r.Context(), userID, request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// UpdateCustomReport updates an existing custom report
func (h *Handler) UpdateCustomReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request services.CustomReportInput
	if !decodeBody(w, r, &request) {
		return
	}

	report, err := h.reports.Update(r.Context(), mux.Vars(r)["id"], userID, request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DeleteCustomReport deletes a custom report
func (h *Handler) DeleteCustomReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.reports.Delete(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunCustomReport computes a custom report against the live records
func (h *Handler) RunCustomReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.reports.Run(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
