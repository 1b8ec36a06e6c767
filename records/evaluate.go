package records

import "skillboard/backend/models"

// Apply returns the records of store that satisfy p, in their original order.
// The store is scanned in full on every call; record stores are small enough
// that no index is kept. The result is a new non-nil slice sharing the record
// values of store.
func Apply(store []models.Record, p Predicate) []models.Record {
	if p == nil {
		p = MatchAll
	}
	out := make([]models.Record, 0, len(store))
	for _, r := range store {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}

// Window returns the part of view selected by page. Offsets past the end give
// an empty slice.
func Window(view []models.Record, page models.Page) []models.Record {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(view) {
		return []models.Record{}
	}
	end := len(view)
	if page.Limit > 0 && offset+page.Limit < end {
		end = offset + page.Limit
	}
	return view[offset:end]
}
