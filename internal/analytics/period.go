package analytics

import (
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// Preceding returns the period of equal length ending the day before p starts.
// For a period of D days the result is [start-D, start-1].
func Preceding(p models.Period) models.Period {
	end := p.Start.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(p.Days() - 1))
	return models.Period{Start: start, End: end}
}

// MonthPeriod covers every day of the given month
func MonthPeriod(year int, month time.Month) models.Period {
	start := models.Date(year, month, 1)
	return models.Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// YearPeriod covers every day of the given year
func YearPeriod(year int) models.Period {
	return models.Period{Start: models.Date(year, time.January, 1), End: models.Date(year, time.December, 31)}
}

// comparisonBase is the window a variation recipe compares against:
// the requested period, or the span of the current slice when none was given.
func comparisonBase(requested models.Period, current RecordSet) (models.Period, bool) {
	if !requested.IsZero() {
		return requested, true
	}
	return current.DateRange()
}
