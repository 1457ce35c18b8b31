package analytics

import (
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// RecordSet is an ordered, read-only view over order records.
// Subsets share the parent's records; nothing is copied or mutated.
type RecordSet struct {
	records []*models.OrderRecord
}

// NewRecordSet wraps loaded records, keeping their natural order
func NewRecordSet(records []models.OrderRecord) RecordSet {
	refs := make([]*models.OrderRecord, len(records))
	for i := range records {
		refs[i] = &records[i]
	}
	return RecordSet{records: refs}
}

// Len returns the number of records
func (s RecordSet) Len() int { return len(s.records) }

// Empty reports whether the set has no records
func (s RecordSet) Empty() bool { return len(s.records) == 0 }

// Records exposes the underlying records in order. Callers must not modify them.
func (s RecordSet) Records() []*models.OrderRecord { return s.records }

// Filter returns the records accepted by keep, in order
func (s RecordSet) Filter(keep func(r *models.OrderRecord) bool) RecordSet {
	out := make([]*models.OrderRecord, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return RecordSet{records: out}
}

// InPeriod returns the records purchased inside p
func (s RecordSet) InPeriod(p models.Period) RecordSet {
	return s.Filter(func(r *models.OrderRecord) bool {
		return p.Contains(r.PurchasedAt)
	})
}

// DateRange returns the first and last purchase dates of the set
func (s RecordSet) DateRange() (models.Period, bool) {
	if s.Empty() {
		return models.Period{}, false
	}
	var first, last time.Time
	for i, r := range s.records {
		d := r.PurchaseDate()
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return models.Period{Start: first, End: last}, true
}
