package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical text form of date fields.
const DateLayout = "2006-01-02"

// Record is one row of a resource table (candidate, user, purchase order, ...).
// Values are primitives: string, float64, bool or time.Time. The "id" field identifies the record.
type Record map[string]interface{}

// ID returns the record identifier, or "" when the record has none.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	v, ok := r[FieldID]
	if !ok || v == nil {
		return ""
	}
	return Text(v)
}

// Clone returns a shallow copy of the record. Values are primitives, so this is a full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Lookup returns the value of a field and whether it is present and non-nil.
func (r Record) Lookup(field string) (interface{}, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Text renders a primitive value in its canonical text form.
func Text(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case time.Time:
		return val.Format(DateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(DateLayout)
	default:
		return ""
	}
}

// Number converts a numeric primitive to float64.
func Number(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseDate accepts either a plain date or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
