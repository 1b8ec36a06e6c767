package models

import "time"

// UnknownBucket collects records whose bucketing field is absent or blank.
const UnknownBucket = "unknown"

// Aggregate scopes
const (
	ScopeAll      = "all"
	ScopeFiltered = "filtered"
)

// Bucket is one category of a summary.
type Bucket struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary counts records grouped by category.
type Summary struct {
	GroupBy string         `json:"groupBy,omitempty"`
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
	Buckets []Bucket       `json:"buckets"`
}

// Selection is the "N of M" summary of a filtered view.
type Selection struct {
	Matched int     `json:"matched"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// ReportConfig describes what a custom report aggregates.
type ReportConfig struct {
	Resource string   `json:"resource" yaml:"resource"`
	GroupBy  string   `json:"groupBy" yaml:"groupBy"`
	Scope    string   `json:"scope,omitempty" yaml:"scope,omitempty"` // all or filtered
	Criteria Criteria `json:"criteria" yaml:"criteria"`
}

// CustomReport is a saved aggregate definition.
type CustomReport struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	UserID      string       `json:"userId" db:"user_id"`
	Description string       `json:"description" db:"description"`
	Config      ReportConfig `json:"config" db:"-"`
	IsPublic    bool         `json:"isPublic" db:"is_public"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// ReportResult is the outcome of running a custom report against the live table.
type ReportResult struct {
	Report    *CustomReport `json:"report"`
	State     ViewState     `json:"state"`
	Summary   Summary       `json:"summary"`
	Selection Selection     `json:"selection"`
}
