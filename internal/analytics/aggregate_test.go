package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByKeepsFirstEncounteredOrder(t *testing.T) {
	s := set(
		order("b", at(2018, 5, 1), 10),
		order("a", at(2018, 5, 2), 20),
		order("b", at(2018, 5, 3), 30),
		order("c", at(2018, 5, 4), 40),
	)

	groups := s.GroupBy(BySeller, Sum, Payment)

	require.Len(t, groups, 3)
	assert.Equal(t, "b", groups[0].Key)
	assert.Equal(t, 40.0, groups[0].Value)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "a", groups[1].Key)
	assert.Equal(t, "c", groups[2].Key)
}

func TestGroupBySkipsAbsentKeys(t *testing.T) {
	s := set(
		order("a", at(2018, 5, 1), 10, category("toys")),
		order("a", at(2018, 5, 2), 10),
		order("a", at(2018, 5, 3), 10, category("toys")),
	)

	groups := s.CountBy(ByCategory)

	require.Len(t, groups, 1)
	assert.Equal(t, "toys", groups[0].Key)
	assert.Equal(t, 2.0, groups[0].Value)
}

func TestTopNBreaksTiesByFirstAppearance(t *testing.T) {
	s := set(
		order("x", at(2018, 5, 1), 1),
		order("y", at(2018, 5, 1), 1),
		order("y", at(2018, 5, 1), 1),
		order("x", at(2018, 5, 1), 1),
		order("z", at(2018, 5, 1), 1),
	)

	top := TopN(s.CountBy(BySeller), 2)

	require.Len(t, top, 2)
	assert.Equal(t, "x", top[0].Key)
	assert.Equal(t, "y", top[1].Key)
}

func TestTopNReturnsWhatExists(t *testing.T) {
	s := set(order("only", at(2018, 5, 1), 1))

	assert.Len(t, TopN(s.CountBy(BySeller), 10), 1)
	assert.Len(t, BottomN(s.CountBy(BySeller), 10), 1)
	assert.Empty(t, TopN(RecordSet{}.CountBy(BySeller), 10))
}

func TestMeanGroupsWithoutValuesNeverRank(t *testing.T) {
	s := set(
		order("silent", at(2018, 5, 1), 1),
		order("rated", at(2018, 5, 1), 1, reviewed(2)),
	)

	groups := s.GroupBy(BySeller, Mean, ReviewScore)
	require.Len(t, groups, 2)
	assert.False(t, groups[0].Valid)

	bottom := BottomN(groups, 1)
	require.Len(t, bottom, 1)
	assert.Equal(t, "rated", bottom[0].Key)
	assert.Equal(t, 2.0, bottom[0].Value)
}

func TestScalarsOnEmptySet(t *testing.T) {
	var empty RecordSet

	assert.Equal(t, 0.0, empty.Sum(Payment))
	_, ok := empty.Mean(Payment)
	assert.False(t, ok)
	assert.Equal(t, 0, empty.CountDistinct(BySeller))
	_, ok = empty.LateShare()
	assert.False(t, ok)
	_, ok = empty.DateRange()
	assert.False(t, ok)
}

func TestMeanSkipsAbsentValues(t *testing.T) {
	s := set(
		order("a", at(2018, 5, 1), 1, reviewed(4)),
		order("a", at(2018, 5, 1), 1),
		order("a", at(2018, 5, 1), 1, reviewed(2)),
	)

	mean, ok := s.Mean(ReviewScore)
	require.True(t, ok)
	assert.Equal(t, 3.0, mean)
}

func TestDeliveryDaysAreFloored(t *testing.T) {
	r := order("a", at(2018, 5, 1), 1)
	r.DeliveredAt.Time = r.PurchasedAt.Add(47 * time.Hour)
	r.DeliveredAt.Valid = true

	days, ok := r.DeliveryDays()
	require.True(t, ok)
	assert.Equal(t, 1.0, days)
}

func TestLateShareCountsUnknownAsOnTime(t *testing.T) {
	s := set(
		order("a", at(2018, 5, 1), 1, deliveredAfter(10), estimatedAfter(5)),
		order("a", at(2018, 5, 1), 1, deliveredAfter(3), estimatedAfter(5)),
		order("a", at(2018, 5, 1), 1, deliveredAfter(3)),
		order("a", at(2018, 5, 1), 1),
	)

	share, ok := s.LateShare()
	require.True(t, ok)
	assert.Equal(t, 0.25, share)
}

func TestInPeriodUsesCalendarDates(t *testing.T) {
	s := set(
		order("a", time.Date(2018, 5, 9, 23, 59, 0, 0, time.UTC), 1),
		order("a", time.Date(2018, 5, 10, 0, 0, 0, 0, time.UTC), 2),
		order("a", time.Date(2018, 5, 10, 23, 59, 59, 0, time.UTC), 3),
		order("a", time.Date(2018, 5, 11, 0, 0, 0, 0, time.UTC), 4),
	)

	day := models.NewPeriod(models.Date(2018, 5, 10), models.Date(2018, 5, 10))

	assert.Equal(t, 5.0, s.InPeriod(day).Sum(Payment))
}

func TestSortByKeyIsChronologicalForMonths(t *testing.T) {
	s := set(
		order("a", at(2018, 3, 1), 1),
		order("a", at(2017, 12, 1), 1),
		order("a", at(2018, 1, 1), 1),
	)

	months := SortByKey(s.CountBy(ByYearMonth))

	require.Len(t, months, 3)
	assert.Equal(t, []string{"2017-12", "2018-01", "2018-03"}, []string{months[0].Key, months[1].Key, months[2].Key})
}

func TestSortByKeyKeepsEmptyResultNonNil(t *testing.T) {
	sorted := SortByKey(nil)
	require.NotNil(t, sorted)
	assert.Empty(t, sorted)

	body, err := json.Marshal(struct {
		Months []Group `json:"months"`
	}{SortByKey(set().CountBy(ByYearMonth))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"months":[]}`, string(body))
}

func TestSortByKeyLeavesInputUntouched(t *testing.T) {
	groups := []Group{{Key: "b"}, {Key: "a"}}
	sorted := SortByKey(groups)

	assert.Equal(t, "a", sorted[0].Key)
	assert.Equal(t, "b", groups[0].Key)
}
