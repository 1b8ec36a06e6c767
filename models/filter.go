package models

import (
	"strings"
	"time"
)

// FilterAll is the sentinel filter value meaning "do not constrain on this field".
const FilterAll = "all"

// Criteria is the combination of free-text search and categorical filters for a resource table.
type Criteria struct {
	SearchQuery string            `json:"searchQuery" yaml:"searchQuery"`
	Filters     map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// IsSentinel reports whether a filter value places no constraint on its field.
func IsSentinel(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, FilterAll)
}

// Active returns the filters that constrain the view, i.e. every non-sentinel entry.
func (c Criteria) Active() map[string]string {
	active := make(map[string]string, len(c.Filters))
	for k, v := range c.Filters {
		if !IsSentinel(v) {
			active[k] = strings.TrimSpace(v)
		}
	}
	return active
}

// IsEmpty reports whether the criteria leave the view unconstrained.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.SearchQuery) == "" && len(c.Active()) == 0
}

// Merge overlays other on top of c. Non-empty search and any filter key set in other win.
func (c Criteria) Merge(other Criteria) Criteria {
	out := Criteria{SearchQuery: c.SearchQuery, Filters: make(map[string]string, len(c.Filters)+len(other.Filters))}
	for k, v := range c.Filters {
		out.Filters[k] = v
	}
	if strings.TrimSpace(other.SearchQuery) != "" {
		out.SearchQuery = other.SearchQuery
	}
	for k, v := range other.Filters {
		out.Filters[k] = v
	}
	return out
}

// SavedFilter represents a saved criteria configuration for a specific resource type
type SavedFilter struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	UserID       string    `json:"userId" db:"user_id"`
	ResourceType string    `json:"resourceType" db:"resource_type"` // candidates, users, etc.
	Criteria     Criteria  `json:"criteria" db:"-"`
	IsDefault    bool      `json:"isDefault" db:"is_default"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Page is a window over a filtered view.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"` // 0 means no limit
}
