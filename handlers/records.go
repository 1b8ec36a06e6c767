package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"skillboard/backend/middleware"
	"skillboard/backend/models"
	"skillboard/backend/records"
	"skillboard/backend/services"
)

// Query parameters that are not field filters
var reservedParams = map[string]bool{
	"q":           true,
	"limit":       true,
	"offset":      true,
	"savedFilter": true,
	"default":     true,
	"by":          true,
	"scope":       true,
}

// criteriaFromQuery reads the search text and field filters of a request.
// Every non-reserved parameter is a filter on the field of that name.
func criteriaFromQuery(query url.Values) models.Criteria {
	c := models.Criteria{SearchQuery: query.Get("q"), Filters: map[string]string{}}
	for key, values := range query {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		c.Filters[key] = values[0]
	}
	return c
}

func pageFromQuery(query url.Values) (models.Page, error) {
	var page models.Page
	var fields []models.FieldError
	for _, p := range []struct {
		name string
		dst  *int
	}{{"offset", &page.Offset}, {"limit", &page.Limit}} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, models.FieldError{Field: p.name, Error: p.name + " must be an integer"})
			continue
		}
		*p.dst = n
	}
	if len(fields) > 0 {
		return page, services.NewValidationError(errors.New("invalid page"), fields...)
	}
	return page, nil
}

// criteria merges the request's criteria over the saved filter it names, or
// over the user's default filter when default=true.
func (h *Handler) criteria(r *http.Request, resource string, request models.Criteria) (models.Criteria, error) {
	query := r.URL.Query()
	savedID := query.Get("savedFilter")
	useDefault, _ := strconv.ParseBool(query.Get("default"))
	if savedID == "" && !useDefault {
		return request, nil
	}

	userID := middleware.UserIDFromContext(r)
	base, err := h.filters.Resolve(r.Context(), userID, resource, savedID, useDefault)
	if err != nil {
		return models.Criteria{}, err
	}
	return base.Merge(request), nil
}

// ListRecords returns a page of the records matching the query string
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]

	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.criteria(r, resource, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.records.View(resource, c, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// queryRequest is the body of a records query
type queryRequest struct {
	models.Criteria
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// QueryRecords returns a page of the records matching the criteria in the body
func (h *Handler) QueryRecords(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]

	var request queryRequest
	if !decodeBody(w, r, &request) {
		return
	}
	c, err := h.criteria(r, resource, request.Criteria)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.records.View(resource, c, models.Page{Offset: request.Offset, Limit: request.Limit})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ExportRecords writes the full filtered view as CSV
func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]

	c, err := h.criteria(r, resource, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, schema, err := h.records.Filter(resource, c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resource+".csv"))
	if err := records.WriteCSV(w, schema, view); err != nil {
		h.logger.Error("failed to write export", "resource", resource, "error", err)
	}
}

// GetRecord returns one record
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.records.Get(vars["resource"], vars["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateRecord adds a record
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload models.Record
	if !decodeBody(w, r, &payload) {
		return
	}

	rec, err := h.records.Create(r.Context(), mux.Vars(r)["resource"], payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateRecord replaces a record
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var payload models.Record
	if !decodeBody(w, r, &payload) {
		return
	}

	vars := mux.Vars(r)
	rec, err := h.records.Update(r.Context(), vars["resource"], vars["id"], payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord removes a record
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.records.Delete(r.Context(), vars["resource"], vars["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// aggregateResponse is a summary together with the "N of M" selection it was computed over
type aggregateResponse struct {
	State     models.ViewState `json:"state"`
	Scope     string           `json:"scope"`
	Summary   models.Summary   `json:"summary"`
	Selection models.Selection `json:"selection"`
}

// GetAggregates counts the records of a resource by one field
func (h *Handler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]
	query := r.URL.Query()

	c, err := h.criteria(r, resource, criteriaFromQuery(query))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	scope := strings.ToLower(strings.TrimSpace(query.Get("scope")))
	if scope == "" {
		scope = models.ScopeAll
	}
	summary, selection, state, err := h.records.Summarize(resource, query.Get("by"), scope, c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, aggregateResponse{
		State:     state,
		Scope:     scope,
		Summary:   summary,
		Selection: selection,
	})
}

// GetOptions returns the values a filter dropdown offers for a field
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	options, err := h.records.Options(vars["resource"], vars["field"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field":   vars["field"],
		"options": append([]string{models.FilterAll}, options...),
	})
}
