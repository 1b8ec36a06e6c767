package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldID is the identity field every record carries.
const FieldID = "id"

// FieldKind is the primitive type of a declared field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindDate   FieldKind = "date"
)

// FieldSpec declares one column of a resource table.
type FieldSpec struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Kind       FieldKind `json:"kind"`
	Required   bool      `json:"required,omitempty"`
	Rules      string    `json:"rules,omitempty"`   // validator tags applied to present values
	Options    []string  `json:"options,omitempty"` // allowed values, matched case-insensitively
	Searchable bool      `json:"searchable,omitempty"`
	Filterable bool      `json:"filterable,omitempty"`
	Sensitive  bool      `json:"sensitive,omitempty"` // sealed at rest
}

// Schema is the declared record shape of one resource (one dashboard page).
type Schema struct {
	Resource string      `json:"resource"`
	Title    string      `json:"title"`
	Fields   []FieldSpec `json:"fields"`
}

// FieldError is used to indicate an error with a specific record field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Field returns the declaration of a field.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// SearchFields returns the names of the fields free-text search looks at.
func (s *Schema) SearchFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Searchable {
			names = append(names, f.Name)
		}
	}
	return names
}

// FilterFields returns the names of the fields categorical filters may constrain.
func (s *Schema) FilterFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Filterable {
			names = append(names, f.Name)
		}
	}
	return names
}

// SensitiveFields returns the names of the fields sealed at rest.
func (s *Schema) SensitiveFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Sensitive {
			names = append(names, f.Name)
		}
	}
	return names
}

// Columns returns the export column order: id followed by the declared fields.
func (s *Schema) Columns() []string {
	cols := []string{FieldID}
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Canonical rewrites the filter values of date fields to their calendar date,
// so a timestamp selects the day it falls on.
func (s *Schema) Canonical(c Criteria) Criteria {
	out := Criteria{SearchQuery: c.SearchQuery, Filters: make(map[string]string, len(c.Filters))}
	for key, value := range c.Filters {
		if f, ok := s.Field(key); ok && f.Kind == KindDate && !IsSentinel(value) {
			if d, ok := ParseDate(value); ok {
				value = d.Format(DateLayout)
			}
		}
		out.Filters[key] = value
	}
	return out
}

// Normalize coerces a submitted payload into the declared field kinds.
// Undeclared fields are dropped; required fields and option lists are enforced.
func (s *Schema) Normalize(payload Record) (Record, []FieldError) {
	out := make(Record, len(s.Fields)+1)
	var errs []FieldError

	if id := strings.TrimSpace(payload.ID()); id != "" {
		out[FieldID] = id
	}

	for _, f := range s.Fields {
		raw, ok := payload.Lookup(f.Name)
		if ok {
			if str, isStr := raw.(string); isStr && strings.TrimSpace(str) == "" {
				ok = false
			}
		}
		if !ok {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Error: f.Name + " is a required field"})
			}
			continue
		}

		v, err := coerce(f.Kind, raw)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Error: err.Error()})
			continue
		}

		if len(f.Options) > 0 {
			canonical, found := matchOption(f.Options, Text(v))
			if !found {
				errs = append(errs, FieldError{
					Field: f.Name,
					Error: fmt.Sprintf("%s must be one of [%s]", f.Name, strings.Join(f.Options, " ")),
				})
				continue
			}
			v = canonical
		}

		out[f.Name] = v
	}

	return out, errs
}

func coerce(kind FieldKind, raw interface{}) (interface{}, error) {
	switch kind {
	case KindNumber:
		n, ok := Number(raw)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be true or false")
			}
			return b, nil
		}
		return nil, fmt.Errorf("must be true or false")
	case KindDate:
		switch v := raw.(type) {
		case time.Time:
			return v.Format(DateLayout), nil
		case string:
			t, ok := ParseDate(v)
			if !ok {
				return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
			}
			return t.Format(DateLayout), nil
		}
		return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
	default:
		s := strings.TrimSpace(Text(raw))
		if s == "" {
			return nil, fmt.Errorf("must be text")
		}
		return s, nil
	}
}

func matchOption(options []string, value string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return o, true
		}
	}
	return "", false
}
