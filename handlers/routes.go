package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all API routes on r. protect guards every route that
// reads or changes records, saved filters or reports.
func (h *Handler) RegisterRoutes(r *mux.Router, protect mux.MiddlewareFunc) {
	// Public routes (no auth required)
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/schemas", h.GetSchemas).Methods("GET")
	r.HandleFunc("/schemas/{resource}", h.GetSchema).Methods("GET")

	// Create a subrouter for authenticated routes
	protected := r.PathPrefix("").Subrouter()
	protected.Use(protect)

	// Resource tables
	protected.HandleFunc("/resources/{resource}/records", h.ListRecords).Methods("GET")
	protected.HandleFunc("/resources/{resource}/records", h.CreateRecord).Methods("POST")
	protected.HandleFunc("/resources/{resource}/records/query", h.QueryRecords).Methods("POST")
	protected.HandleFunc("/resources/{resource}/records/export.csv", h.ExportRecords).Methods("GET")
	protected.HandleFunc("/resources/{resource}/records/{id}", h.GetRecord).Methods("GET")
	protected.HandleFunc("/resources/{resource}/records/{id}", h.UpdateRecord).Methods("PUT")
	protected.HandleFunc("/resources/{resource}/records/{id}", h.DeleteRecord).Methods("DELETE")
	protected.HandleFunc("/resources/{resource}/aggregates", h.GetAggregates).Methods("GET")
	protected.HandleFunc("/resources/{resource}/options/{field}", h.GetOptions).Methods("GET")

	// Saved filters
	protected.HandleFunc("/filters", h.GetSavedFilters).Methods("GET")
	protected.HandleFunc("/filters", h.CreateSavedFilter).Methods("POST")
	protected.HandleFunc("/filters/{id}", h.GetSavedFilter).Methods("GET")
	protected.HandleFunc("/filters/{id}", h.UpdateSavedFilter).Methods("PUT")
	protected.HandleFunc("/filters/{id}", h.DeleteSavedFilter).Methods("DELETE")

	// Custom reports
	protected.HandleFunc("/reports/custom", h.GetCustomReports).Methods("GET")
	protected.HandleFunc("/reports/custom", h.CreateCustomReport).Methods("POST")
	protected.HandleFunc("/reports/custom/{id}", h.GetCustomReport).Methods("GET")
	protected.HandleFunc("/reports/custom/{id}", h.UpdateCustomReport).Methods("PUT")
	protected.HandleFunc("/reports/custom/{id}", h.DeleteCustomReport).Methods("DELETE")
	protected.HandleFunc("/reports/custom/{id}/run", h.RunCustomReport).Methods("POST")
}
