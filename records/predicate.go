// Package records holds the tabular record filter: predicates built from search
// text and categorical filters, the evaluator that applies them to a record
// store, and the aggregates derived from the result.
package records

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"skillboard/backend/models"
)

// Predicate reports whether a record satisfies a set of criteria.
type Predicate func(models.Record) bool

// MatchAll is the predicate of unconstrained criteria.
func MatchAll(models.Record) bool { return true }

// fold case-folds s. A new Caser is taken per call because Casers keep state.
func fold(s string) string {
	return cases.Fold().String(s)
}

// BuildPredicate combines the search query and the active filters of c into a
// single predicate. The query matches when any of searchFields contains it,
// ignoring case; each active filter must equal the record's field. Records
// missing a constrained field never match.
func BuildPredicate(searchFields []string, c models.Criteria) Predicate {
	query := fold(strings.TrimSpace(c.SearchQuery))
	active := c.Active()

	if query == "" && len(active) == 0 {
		return MatchAll
	}

	fields := make([]string, len(searchFields))
	copy(fields, searchFields)

	matchers := make([]fieldMatcher, 0, len(active))
	for field, want := range active {
		matchers = append(matchers, newFieldMatcher(field, want))
	}

	return func(r models.Record) bool {
		for _, m := range matchers {
			if !m.match(r) {
				return false
			}
		}
		if query == "" {
			return true
		}
		for _, f := range fields {
			v, ok := r.Lookup(f)
			if !ok {
				continue
			}
			if strings.Contains(fold(models.Text(v)), query) {
				return true
			}
		}
		return false
	}
}

// fieldMatcher compares one record field against a selected filter value.
// The value is pre-parsed for every kind it could be compared as.
type fieldMatcher struct {
	field  string
	folded string

	number    float64
	hasNumber bool
	boolean   bool
	hasBool   bool
	date      string
	hasDate   bool
}

func newFieldMatcher(field, want string) fieldMatcher {
	m := fieldMatcher{field: field, folded: fold(want)}
	if n, err := strconv.ParseFloat(want, 64); err == nil {
		m.number, m.hasNumber = n, true
	}
	if b, err := strconv.ParseBool(want); err == nil {
		m.boolean, m.hasBool = b, true
	}
	if d, ok := models.ParseDate(want); ok {
		m.date, m.hasDate = d.Format(models.DateLayout), true
	}
	return m
}

func (m fieldMatcher) match(r models.Record) bool {
	v, ok := r.Lookup(m.field)
	if !ok {
		return false
	}

	switch val := v.(type) {
	case string:
		return fold(strings.TrimSpace(val)) == m.folded
	case bool:
		return m.hasBool && val == m.boolean
	case time.Time:
		return m.hasDate && val.Format(models.DateLayout) == m.date
	case *time.Time:
		return val != nil && m.hasDate && val.Format(models.DateLayout) == m.date
	}

	if n, isNumber := number(v); isNumber {
		return m.hasNumber && n == m.number
	}
	return false
}

// number converts numeric kinds only; strings are compared as text.
func number(v interface{}) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return models.Number(v)
}
