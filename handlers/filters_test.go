package handlers

import (
	"net/http"
	"reflect"
	"testing"

	"skillboard/backend/models"
)

func TestSavedFilterFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/filters", map[string]interface{}{
		"name":         "Pune",
		"resourceType": "candidates",
		"criteria":     map[string]interface{}{"filters": map[string]string{"center": "Pune"}},
		"isDefault":    true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var filter models.SavedFilter
	decode(t, rr, &filter)

	testCases := []struct {
		name        string
		url         string
		expectedIDs []string
	}{
		{name: "Default filter", url: "/resources/candidates/records?default=true", expectedIDs: []string{"1", "3"}},
		{name: "Saved filter with search", url: "/resources/candidates/records?savedFilter=" + filter.ID + "&q=alice", expectedIDs: []string{"3"}},
		{name: "Request overrides saved value", url: "/resources/candidates/records?default=true&center=all", expectedIDs: []string{"1", "2", "3"}},
		{name: "Default not requested", url: "/resources/candidates/records?status=placed", expectedIDs: []string{"2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, "GET", tc.url, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
			}
			var view models.FilteredView
			decode(t, rr, &view)
			if ids := recordIDs(view.Records); !reflect.DeepEqual(ids, tc.expectedIDs) {
				t.Errorf("Expected %v, got %v", tc.expectedIDs, ids)
			}
		})
	}

	rr = env.do(t, "GET", "/filters?resourceType=candidates", nil)
	var filters []models.SavedFilter
	decode(t, rr, &filters)
	if len(filters) != 1 || filters[0].ID != filter.ID {
		t.Errorf("Expected the saved filter to be listed, got %+v", filters)
	}

	if rr := env.do(t, "GET", "/filters/"+filter.ID, nil, "X-Test-User", "someone-else"); rr.Code != http.StatusForbidden {
		t.Errorf("Expected status %d for another user, got %d", http.StatusForbidden, rr.Code)
	}

	rr = env.do(t, "PUT", "/filters/"+filter.ID, map[string]interface{}{
		"name":     "Delhi",
		"criteria": map[string]interface{}{"filters": map[string]string{"center": "Delhi"}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	decode(t, rr, &filter)
	if filter.Name != "Delhi" || filter.IsDefault {
		t.Errorf("Unexpected updated filter: %+v", filter)
	}

	rr = env.do(t, "POST", "/filters", map[string]interface{}{"name": "", "resourceType": "candidates"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for a blank name, got %d", http.StatusBadRequest, rr.Code)
	}

	if rr := env.do(t, "DELETE", "/filters/"+filter.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr := env.do(t, "GET", "/filters/"+filter.ID, nil); rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCustomReportFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/reports/custom", map[string]interface{}{
		"name":        "Outcomes by course",
		"description": "Retail cohort",
		"config": map[string]interface{}{
			"resource": "candidates",
			"groupBy":  "status",
			"scope":    "filtered",
			"criteria": map[string]interface{}{"filters": map[string]string{"course": "Retail"}},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var report models.CustomReport
	decode(t, rr, &report)

	rr = env.do(t, "POST", "/reports/custom/"+report.ID+"/run", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var result models.ReportResult
	decode(t, rr, &result)
	if !reflect.DeepEqual(result.Summary.Counts, map[string]int{"placed": 1, "dropout": 1}) {
		t.Errorf("Unexpected report counts: %v", result.Summary.Counts)
	}
	if result.Selection.Matched != 2 || result.Selection.Total != 3 {
		t.Errorf("Unexpected selection: %+v", result.Selection)
	}

	if rr := env.do(t, "POST", "/reports/custom/"+report.ID+"/run", nil, "X-Test-User", "someone-else"); rr.Code != http.StatusForbidden {
		t.Errorf("Expected status %d running a private report, got %d", http.StatusForbidden, rr.Code)
	}

	rr = env.do(t, "GET", "/reports/custom", nil)
	var reports []models.CustomReport
	decode(t, rr, &reports)
	if len(reports) != 1 {
		t.Errorf("Expected 1 report, got %d", len(reports))
	}

	rr = env.do(t, "POST", "/reports/custom", map[string]interface{}{
		"name":   "Broken",
		"config": map[string]interface{}{"resource": "candidates", "groupBy": "salary"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for an unknown group field, got %d", http.StatusBadRequest, rr.Code)
	}

	if rr := env.do(t, "DELETE", "/reports/custom/"+report.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr := env.do(t, "POST", "/reports/custom/"+report.ID+"/run", nil); rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after delete, got %d", http.StatusNotFound, rr.Code)
	}
}
