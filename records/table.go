package records

import (
	"sync"
	"time"

	"skillboard/backend/models"
)

// Table is the record store of one resource. Readers work on an immutable
// snapshot of the rows; every mutation swaps in a new slice.
type Table struct {
	schema *models.Schema

	mu       sync.RWMutex
	rows     []models.Record
	state    models.ViewState
	err      error
	loadedAt time.Time
}

// NewTable returns an empty table in the loading state.
func NewTable(schema *models.Schema) *Table {
	return &Table{
		schema: schema,
		rows:   []models.Record{},
		state:  models.StateLoading,
	}
}

// Schema returns the declared shape of the table's records.
func (t *Table) Schema() *models.Schema {
	return t.schema
}

// Load replaces the contents of the table wholesale.
func (t *Table) Load(rs []models.Record) {
	rows := make([]models.Record, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, r.Clone())
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = rows
	t.state = models.StateReady
	t.err = nil
	t.loadedAt = time.Now()
}

// Fail records that the record source could not be read. Rows from an earlier
// successful load are dropped so no stale data is served.
func (t *Table) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = []models.Record{}
	t.state = models.StateError
	t.err = err
}

// Snapshot returns the current rows and load state. The returned slice and its
// records must not be modified.
func (t *Table) Snapshot() ([]models.Record, models.ViewState, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows, t.state, t.err
}

// LoadedAt returns the time of the last successful load.
func (t *Table) LoadedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loadedAt
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Get returns a copy of the record with the given id.
func (t *Table) Get(id string) (models.Record, bool) {
	rows, _, _ := t.Snapshot()
	for _, r := range rows {
		if r.ID() == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

// Upsert replaces the record with the same id in place, or appends it.
func (t *Table) Upsert(r models.Record) {
	r = r.Clone()
	id := r.ID()

	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]models.Record, 0, len(t.rows)+1)
	replaced := false
	for _, existing := range t.rows {
		if !replaced && existing.ID() == id {
			rows = append(rows, r)
			replaced = true
			continue
		}
		rows = append(rows, existing)
	}
	if !replaced {
		rows = append(rows, r)
	}
	t.rows = rows
}

// Remove deletes the record with the given id and reports whether it existed.
func (t *Table) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]models.Record, 0, len(t.rows))
	for _, existing := range t.rows {
		if existing.ID() != id {
			rows = append(rows, existing)
		}
	}
	if len(rows) == len(t.rows) {
		return false
	}
	t.rows = rows
	return true
}

// Filter returns the full filtered view of the table and the rows it was taken from.
func (t *Table) Filter(c models.Criteria) (view, rows []models.Record, state models.ViewState, err error) {
	rows, state, err = t.Snapshot()
	var search []string
	if t.schema != nil {
		search = t.schema.SearchFields()
		c = t.schema.Canonical(c)
	}
	return Apply(rows, BuildPredicate(search, c)), rows, state, err
}

// View returns one page of the records matching c, tagged with the view state.
// A table that has not loaded yet reports loading rather than empty.
func (t *Table) View(c models.Criteria, page models.Page) models.FilteredView {
	view, rows, state, err := t.Filter(c)

	fv := models.FilteredView{
		State:   state,
		Total:   len(rows),
		Matched: len(view),
		Offset:  page.Offset,
		Records: Window(view, page),
	}
	if t.schema != nil {
		fv.Resource = t.schema.Resource
	}
	if err != nil {
		fv.Error = err.Error()
	}
	if state == models.StateReady && len(view) == 0 {
		fv.State = models.StateEmpty
	}
	return fv
}

// Summarize counts records by field over the whole table (scope "all") or over
// the records matching c (scope "filtered").
func (t *Table) Summarize(field, scope string, c models.Criteria) (models.Summary, models.Selection, models.ViewState) {
	view, rows, state, _ := t.Filter(c)

	source := rows
	if scope == models.ScopeFiltered {
		source = view
	}
	return AggregateBy(source, field), Select(rows, view), state
}

// Options returns the distinct values of field present in the table.
func (t *Table) Options(field string) []string {
	rows, _, _ := t.Snapshot()
	return Distinct(rows, field)
}
