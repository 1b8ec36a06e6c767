package records

import (
	"math"
	"sort"
	"strings"

	"skillboard/backend/models"
)

// Bucketer maps a record to its category key. An empty key means the record
// has no category and is counted as unknown.
type Bucketer func(models.Record) string

// FieldBucket buckets records by the text of one field.
func FieldBucket(field string) Bucketer {
	return func(r models.Record) string {
		v, ok := r.Lookup(field)
		if !ok {
			return ""
		}
		return strings.TrimSpace(models.Text(v))
	}
}

// Aggregate counts rs by category. Every record lands in exactly one bucket,
// so the counts always sum to len(rs). Keys differing only in case share a
// bucket, named by their first spelling, matching how filters compare values.
func Aggregate(rs []models.Record, by Bucketer) models.Summary {
	counts := make(map[string]int)
	spelling := make(map[string]string)
	for _, r := range rs {
		key := ""
		if by != nil {
			key = by(r)
		}
		if key == "" {
			key = models.UnknownBucket
		}
		folded := fold(key)
		if first, ok := spelling[folded]; ok {
			key = first
		} else {
			spelling[folded] = key
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fold(keys[i]) < fold(keys[j])
	})

	buckets := make([]models.Bucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, models.Bucket{
			Key:     k,
			Count:   counts[k],
			Percent: percent(counts[k], len(rs)),
		})
	}

	return models.Summary{
		Total:   len(rs),
		Counts:  counts,
		Buckets: buckets,
	}
}

// AggregateBy counts rs by the value of field.
func AggregateBy(rs []models.Record, field string) models.Summary {
	s := Aggregate(rs, FieldBucket(field))
	s.GroupBy = field
	return s
}

// Select summarises how much of the store a view covers ("24 of 100").
func Select(store, view []models.Record) models.Selection {
	return models.Selection{
		Matched: len(view),
		Total:   len(store),
		Percent: percent(len(view), len(store)),
	}
}

// Distinct returns the sorted distinct values of field, for filter dropdowns.
// Values differing only in case are reported once, in their first spelling.
func Distinct(rs []models.Record, field string) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, r := range rs {
		v, ok := r.Lookup(field)
		if !ok {
			continue
		}
		text := strings.TrimSpace(models.Text(v))
		if text == "" {
			continue
		}
		key := fold(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, text)
	}
	sort.Slice(values, func(i, j int) bool {
		return fold(values[i]) < fold(values[j])
	})
	return values
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(whole)) / 100
}
