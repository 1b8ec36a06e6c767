package records

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"skillboard/backend/models"
)

func candidateTable(t *testing.T) *Table {
	t.Helper()
	schema, ok := models.LookupSchema(models.ResourceCandidates)
	if !ok {
		t.Fatal("Expected candidates schema")
	}
	return NewTable(schema)
}

func TestTableStates(t *testing.T) {
	table := candidateTable(t)

	view := table.View(models.Criteria{}, models.Page{})
	if view.State != models.StateLoading {
		t.Errorf("Expected loading state before the first load, got %s", view.State)
	}
	if view.Records == nil || len(view.Records) != 0 {
		t.Errorf("Expected empty records while loading, got %v", view.Records)
	}

	table.Load(nil)
	view = table.View(models.Criteria{}, models.Page{})
	if view.State != models.StateEmpty {
		t.Errorf("Expected empty state after loading nothing, got %s", view.State)
	}

	table.Load(sampleCandidates())
	view = table.View(models.Criteria{}, models.Page{})
	if view.State != models.StateReady || view.Matched != 3 || view.Total != 3 {
		t.Errorf("Expected ready with 3 of 3, got %+v", view)
	}

	view = table.View(models.Criteria{SearchQuery: "nobody"}, models.Page{})
	if view.State != models.StateEmpty || view.Total != 3 {
		t.Errorf("Expected empty state with total 3, got %+v", view)
	}

	table.Fail(errors.New("connection refused"))
	view = table.View(models.Criteria{}, models.Page{})
	if view.State != models.StateError || view.Error != "connection refused" {
		t.Errorf("Expected error state, got %+v", view)
	}
	if len(view.Records) != 0 {
		t.Errorf("Expected no records after a failed load, got %d", len(view.Records))
	}
}

func TestTableView(t *testing.T) {
	table := candidateTable(t)
	table.Load(sampleCandidates())

	view := table.View(models.Criteria{SearchQuery: "john"}, models.Page{Limit: 1})
	if view.Resource != models.ResourceCandidates {
		t.Errorf("Expected resource candidates, got %s", view.Resource)
	}
	if view.Matched != 2 {
		t.Errorf("Expected 2 matches, got %d", view.Matched)
	}
	if !reflect.DeepEqual(ids(view.Records), []string{"1"}) {
		t.Errorf("Expected first page [1], got %v", ids(view.Records))
	}
}

func TestTableMutations(t *testing.T) {
	table := candidateTable(t)
	table.Load(sampleCandidates())

	before, _, _ := table.Snapshot()

	table.Upsert(models.Record{"id": "2", "name": "Jane Smith", "status": "migrated"})
	table.Upsert(models.Record{"id": "4", "name": "Ravi Kumar", "status": "active"})

	rows, _, _ := table.Snapshot()
	if !reflect.DeepEqual(ids(rows), []string{"1", "2", "3", "4"}) {
		t.Errorf("Expected update in place and append, got %v", ids(rows))
	}
	if rows[1]["status"] != "migrated" {
		t.Errorf("Expected record 2 to be updated, got %v", rows[1]["status"])
	}
	if before[1]["status"] != "placed" {
		t.Errorf("Expected earlier snapshot to be unchanged, got %v", before[1]["status"])
	}

	if !table.Remove("1") {
		t.Error("Expected record 1 to be removed")
	}
	if table.Remove("1") {
		t.Error("Expected second removal to report missing record")
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", table.Len())
	}

	rec, ok := table.Get("4")
	if !ok || rec["name"] != "Ravi Kumar" {
		t.Errorf("Expected record 4, got %v", rec)
	}
	rec["name"] = "changed"
	again, _ := table.Get("4")
	if again["name"] != "Ravi Kumar" {
		t.Error("Expected Get to return a copy")
	}
}

func TestTableFiltersDatesByDay(t *testing.T) {
	schema, _ := models.LookupSchema(models.ResourceAttendance)
	table := NewTable(schema)
	table.Load([]models.Record{
		{"id": "a1", "candidate": "John Doe", "date": "2024-02-01", "status": "present"},
		{"id": "a2", "candidate": "Jane Smith", "date": "2024-02-02", "status": "absent"},
	})

	testCases := []struct {
		name     string
		value    string
		expected int
	}{
		{"Plain date", "2024-02-01", 1},
		{"Timestamp", "2024-02-01T00:00:00Z", 1},
		{"Timestamp with offset", "2024-02-02T09:30:00+05:30", 1},
		{"Other day", "2024-02-03", 0},
		{"Sentinel", "all", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			view := table.View(models.Criteria{Filters: map[string]string{"date": tc.value}}, models.Page{})
			if view.Matched != tc.expected {
				t.Errorf("Expected %d matches for %s, got %d", tc.expected, tc.value, view.Matched)
			}
		})
	}
}

func TestTableSummarize(t *testing.T) {
	table := candidateTable(t)
	table.Load(sampleCandidates())

	criteria := models.Criteria{SearchQuery: "john"}

	all, sel, state := table.Summarize("status", models.ScopeAll, criteria)
	if state != models.StateReady {
		t.Errorf("Expected ready state, got %s", state)
	}
	if all.Total != 3 {
		t.Errorf("Expected scope all to count 3 records, got %d", all.Total)
	}
	if sel.Matched != 2 || sel.Total != 3 {
		t.Errorf("Expected selection 2 of 3, got %+v", sel)
	}

	filtered, _, _ := table.Summarize("status", models.ScopeFiltered, criteria)
	expected := map[string]int{"active": 1, "dropout": 1}
	if !reflect.DeepEqual(filtered.Counts, expected) {
		t.Errorf("Expected %v, got %v", expected, filtered.Counts)
	}
}

func TestTableConcurrentAccess(t *testing.T) {
	table := candidateTable(t)
	table.Load(sampleCandidates())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = table.View(models.Criteria{SearchQuery: "john"}, models.Page{})
		}()
		go func() {
			defer wg.Done()
			table.Upsert(models.Record{"id": "x", "name": "Extra", "status": "active"})
		}()
	}
	wg.Wait()

	if table.Len() != 4 {
		t.Errorf("Expected 4 records after concurrent upserts of one id, got %d", table.Len())
	}
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog(models.Schemas())

	expected := []string{"attendance", "bookings", "candidates", "purchase_orders", "users"}
	if !reflect.DeepEqual(catalog.Resources(), expected) {
		t.Errorf("Expected %v, got %v", expected, catalog.Resources())
	}

	table, ok := catalog.Table(models.ResourceBookings)
	if !ok || table.Schema().Resource != models.ResourceBookings {
		t.Error("Expected bookings table")
	}
	if _, ok := catalog.Table("unknown"); ok {
		t.Error("Expected no table for an unknown resource")
	}
}
