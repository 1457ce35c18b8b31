package analytics

import (
	"sort"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// Dimension is a grouping key of an order record
type Dimension int

const (
	BySeller Dimension = iota
	ByCustomer
	ByState
	ByCity
	ByCategory
	ByPurchaseDate
	ByYearMonth
)

// key returns the record's value for the dimension. Records with an
// absent key are left out of every grouping.
func (d Dimension) key(r *models.OrderRecord) (string, bool) {
	var k string
	switch d {
	case BySeller:
		k = r.SellerID
	case ByCustomer:
		k = r.CustomerID
	case ByState:
		k = r.CustomerState
	case ByCity:
		k = r.CustomerCity
	case ByCategory:
		k = r.Category()
	case ByPurchaseDate:
		k = r.PurchaseDate().Format(dateKeyLayout)
	case ByYearMonth:
		k = r.YearMonth()
	}
	return k, k != ""
}

const dateKeyLayout = "2006-01-02"

// Measure is a numeric column of an order record
type Measure int

const (
	Payment Measure = iota
	Freight
	ReviewScore
	DeliveryDays
)

func (m Measure) value(r *models.OrderRecord) (float64, bool) {
	switch m {
	case Payment:
		return r.PaymentValue, true
	case Freight:
		return r.FreightValue, true
	case ReviewScore:
		return r.ReviewScore.Float64, r.ReviewScore.Valid
	case DeliveryDays:
		return r.DeliveryDays()
	}
	return 0, false
}

// Aggregator selects how a group's measure is reduced
type Aggregator int

const (
	Count Aggregator = iota
	Sum
	Mean
)

// Group is one row of a grouped aggregation.
// Count is the number of records in the group; Valid is false when a mean
// had no values to average, and such groups never rank.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Valid bool    `json:"-"`
}

// GroupBy aggregates m over the records of each dim key.
// Groups come back in first-encountered key order.
func (s RecordSet) GroupBy(dim Dimension, agg Aggregator, m Measure) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	var sums []float64
	var present []int

	for _, r := range s.records {
		key, ok := dim.key(r)
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
			sums = append(sums, 0)
			present = append(present, 0)
		}
		groups[i].Count++
		if agg == Count {
			continue
		}
		if v, ok := m.value(r); ok {
			sums[i] += v
			present[i]++
		}
	}

	for i := range groups {
		switch agg {
		case Count:
			groups[i].Value = float64(groups[i].Count)
			groups[i].Valid = true
		case Sum:
			groups[i].Value = sums[i]
			groups[i].Valid = true
		case Mean:
			if present[i] > 0 {
				groups[i].Value = sums[i] / float64(present[i])
				groups[i].Valid = true
			}
		}
	}
	return groups
}

// CountBy counts records per dim key
func (s RecordSet) CountBy(dim Dimension) []Group {
	return s.GroupBy(dim, Count, Payment)
}

// TopN returns at most n valid groups by descending value.
// The sort is stable so ties keep first-encountered order. n < 0 keeps all.
func TopN(groups []Group, n int) []Group {
	return rank(groups, n, true)
}

// BottomN is TopN by ascending value
func BottomN(groups []Group, n int) []Group {
	return rank(groups, n, false)
}

func rank(groups []Group, n int, desc bool) []Group {
	ranked := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Valid {
			ranked = append(ranked, g)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if desc {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Value < ranked[j].Value
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// SortByKey orders groups by ascending key, for chronological buckets
func SortByKey(groups []Group) []Group {
	sorted := make([]Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}

// Sum totals m over the set. Absent values are skipped.
func (s RecordSet) Sum(m Measure) float64 {
	var total float64
	for _, r := range s.records {
		if v, ok := m.value(r); ok {
			total += v
		}
	}
	return total
}

// Mean averages the present values of m. ok is false when there are none.
func (s RecordSet) Mean(m Measure) (float64, bool) {
	var total float64
	var n int
	for _, r := range s.records {
		if v, ok := m.value(r); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// CountDistinct counts the distinct present keys of dim
func (s RecordSet) CountDistinct(dim Dimension) int {
	seen := make(map[string]struct{})
	for _, r := range s.records {
		if k, ok := dim.key(r); ok {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// LateShare is the fraction of records delivered after their estimated date.
// Records with unknown dates count as on time.
func (s RecordSet) LateShare() (float64, bool) {
	if s.Empty() {
		return 0, false
	}
	late := 0
	for _, r := range s.records {
		if isLate, _ := r.IsLate(); isLate {
			late++
		}
	}
	return float64(late) / float64(s.Len()), true
}
