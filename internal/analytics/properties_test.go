package analytics

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// sellersFrom turns generated seller indexes and scores into records
func sellersFrom(sellers []int, scores []int) RecordSet {
	records := make([]models.OrderRecord, len(sellers))
	for i, s := range sellers {
		var opts []recordOpt
		if i < len(scores) && scores[i] > 0 {
			opts = append(opts, reviewed(float64(scores[i])))
		}
		records[i] = order(fmt.Sprintf("seller-%d", s), at(2018, 5, 1+i%28), float64(1+i%7), opts...)
	}
	return NewRecordSet(records)
}

func TestPrecedingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("preceding period ends the day before and has the same length", prop.ForAll(
		func(offset, length int) bool {
			start := models.Date(2016, 1, 1).AddDate(0, 0, offset)
			current := models.Period{Start: start, End: start.AddDate(0, 0, length)}

			prev := Preceding(current)

			return prev.End.Equal(current.Start.AddDate(0, 0, -1)) &&
				prev.Days() == current.Days()
		},
		gen.IntRange(0, 1500),
		gen.IntRange(0, 800),
	))

	properties.TestingRun(t)
}

func TestAggregationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("top-N by seller count is bounded and sorted", prop.ForAll(
		func(sellers []int, n int) bool {
			s := sellersFrom(sellers, nil)
			top := TopN(s.CountBy(BySeller), n)
			if len(top) < 1 || len(top) > n {
				return false
			}
			for i := 1; i < len(top); i++ {
				if top[i].Value > top[i-1].Value {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(30, gen.IntRange(0, 12)),
		gen.IntRange(1, 15),
	))

	properties.Property("seller tiers add up to the seller count", prop.ForAll(
		func(sellers []int, scores []int) bool {
			s := sellersFrom(sellers, scores)
			tiers := TierSellers(s)
			return tiers.HighPerformance+tiers.AtRisk+tiers.Intermediate == s.CountDistinct(BySeller) &&
				tiers.Intermediate >= 0
		},
		gen.SliceOf(gen.IntRange(0, 8)),
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("concentration ratio stays in [0, 1]", prop.ForAll(
		func(sellers []int) bool {
			s := sellersFrom(sellers, nil)
			ratio, ok := ConcentrationRatio(s, 10)
			if !ok {
				return s.Sum(Payment) <= 0
			}
			if s.CountDistinct(BySeller) <= 10 && ratio != 1 {
				return false
			}
			return ratio >= 0 && ratio <= 1
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}

func TestEmptyPeriodProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	history := set(order("a", at(2018, 5, 1), 10, reviewed(5)))
	engine := NewEngine()

	properties.Property("an empty slice always answers with the no-data message", prop.ForAll(
		func(question string) bool {
			resp := engine.Answer(Request{Question: question, History: history})
			return resp.Text == MsgNoData && resp.EmptyPeriod
		},
		gen.OneGenOf(gen.AnyString(), gen.OneConstOf(exampleQuestions()...)),
	))

	properties.TestingRun(t)
}
