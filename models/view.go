package models

// ViewState tells the view layer which of the distinct empty/non-empty states a table is in.
type ViewState string

const (
	StateLoading ViewState = "loading" // record store not loaded yet
	StateEmpty   ViewState = "empty"   // loaded, nothing matched
	StateReady   ViewState = "ready"
	StateError   ViewState = "error" // the record source failed
)

// FilteredView is the subset of a resource table matching the current criteria.
type FilteredView struct {
	Resource string    `json:"resource"`
	State    ViewState `json:"state"`
	Error    string    `json:"error,omitempty"`
	Total    int       `json:"total"`   // size of the record store
	Matched  int       `json:"matched"` // size of the full filtered view
	Offset   int       `json:"offset"`
	Records  []Record  `json:"records"`
}
