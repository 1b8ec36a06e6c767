package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"skillboard/backend/services"
)

// GetSavedFilters returns the saved filters of the current user, optionally
// restricted to one resource type
func (h *Handler) GetSavedFilters(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	filters, err := h.filters.List(r.Context(), userID, r.URL.Query().Get("resourceType"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// GetSavedFilter returns a specific saved filter
func (h *Handler) GetSavedFilter(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := h.filters.Get(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filter)
}

// CreateSavedFilter creates a new saved filter
func (h *Handler) CreateSavedFilter(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request services.SavedFilterInput
	if !decodeBody(w, r, &request) {
		return
	}

	filter, err := h.filters.Create(r.Context(), userID, request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, filter)
}

// UpdateSavedFilter updates an existing saved filter
func (h *Handler) UpdateSavedFilter(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request services.SavedFilterInput
	if !decodeBody(w, r, &request) {
		return
	}

	filter, err := h.filters.Update(r.Context(), mux.Vars(r)["id"], userID, request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filter)
}

// DeleteSavedFilter deletes a saved filter
func (h *Handler) DeleteSavedFilter(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.filters.Delete(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
