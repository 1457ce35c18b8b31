package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// Seller and delivery thresholds
const (
	concentrationTopSellers = 10
	highDependencyRatio     = 0.5
	diversifiedRatio        = 0.2

	highPerformanceMinOrders = 10
	highPerformanceMinScore  = 4.5
	tierRiskMaxOrders        = 5
	riskMaxScore             = 3.5
	atRiskMinOrders          = 10

	delayedAfterDays = 25

	monthlyDropAlert = -0.10
	stableBandPct    = 0.1
)

// input is everything a recipe may read. Recipes keep no state.
type input struct {
	current RecordSet
	history RecordSet
	period  models.Period
}

type recipe func(in input) string

var recipes = map[Intent]recipe{
	IntentRevenueConcentration: revenueConcentration,
	IntentSellerPerformance:    sellerPerformance,
	IntentDelayVsRating:        delayVsRating,
	IntentBestSalesDay:         bestSalesDay,
	IntentWorstSalesDay:        worstSalesDay,
	IntentTopSellerByOrders:    topSellerByOrders,
	IntentTopSellerByTicket:    topSellerByTicket,
	IntentBestRatedSeller:      bestRatedSeller,
	IntentWorstRatedSeller:     worstRatedSeller,
	IntentActiveSellers:        activeSellers,
	IntentAtRiskSellers:        atRiskSellers,
	IntentTopCategories:        topCategories,
	IntentSlowestDeliveryState: slowestDeliveryState,
	IntentFastestDeliveryState: fastestDeliveryState,
	IntentMonthlySalesDrop:     monthlySalesDrop,
	IntentRevenue:              revenueWithComparison,
	IntentMeanTicket:           meanTicketWithComparison,
	IntentUniqueCustomers:      uniqueCustomers,
	IntentMeanDeliveryTime:     meanDeliveryTime,
	IntentLateDeliveries:       lateDeliveries,
	IntentMeanReview:           meanReview,
	IntentMeanFreight:          meanFreight,
	IntentFallback:             func(input) string { return MsgHelp },
}

// ConcentrationRatio is the share of total payment held by the n highest
// grossing sellers. It is exactly 1 when there are at most n sellers.
func ConcentrationRatio(s RecordSet, n int) (float64, bool) {
	total := s.Sum(Payment)
	if total <= 0 {
		return 0, false
	}
	sellers := s.GroupBy(BySeller, Sum, Payment)
	if len(sellers) <= n {
		return 1, true
	}
	var top float64
	for _, g := range TopN(sellers, n) {
		top += g.Value
	}
	ratio := top / total
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

func revenueConcentration(in input) string {
	ratio, ok := ConcentrationRatio(in.current, concentrationTopSellers)
	if !ok {
		return msgNoRevenueForConcentration
	}
	insight := msgConcentrationModerate
	switch {
	case ratio > highDependencyRatio:
		insight = msgConcentrationHigh
	case ratio < diversifiedRatio:
		insight = msgConcentrationDiversified
	}
	return fmt.Sprintf("📊 As 10 maiores lojas representam **%s** do faturamento total. %s", Ratio(ratio), insight)
}

// Tiers splits the sellers of a period by volume and rating
type Tiers struct {
	Total           int `json:"total"`
	HighPerformance int `json:"high_performance"`
	Intermediate    int `json:"intermediate"`
	AtRisk          int `json:"at_risk"`
}

// TierSellers classifies every seller once. A seller without reviews
// never meets a score threshold and lands in Intermediate.
func TierSellers(s RecordSet) Tiers {
	sellers := s.GroupBy(BySeller, Mean, ReviewScore)
	t := Tiers{Total: len(sellers)}
	for _, g := range sellers {
		switch {
		case g.Valid && g.Count > highPerformanceMinOrders && g.Value >= highPerformanceMinScore:
			t.HighPerformance++
		case g.Valid && g.Count < tierRiskMaxOrders && g.Value < riskMaxScore:
			t.AtRisk++
		}
	}
	t.Intermediate = t.Total - t.HighPerformance - t.AtRisk
	return t
}

func sellerPerformance(in input) string {
	t := TierSellers(in.current)
	if t.Total == 0 {
		return msgNoSellersInPeriod
	}
	return fmt.Sprintf("📈 Analisando **%d** vendedores ativos no período:\n"+
		"- **Alta Performance:** %d lojas.\n"+
		"- **Intermediárias:** %d lojas.\n"+
		"- **Em Risco:** %d lojas.",
		t.Total, t.HighPerformance, t.Intermediate, t.AtRisk)
}

func delayVsRating(in input) string {
	delayed := in.current.Filter(func(r *models.OrderRecord) bool {
		d, ok := r.DeliveryDays()
		return ok && d > delayedAfterDays
	})
	onTime := in.current.Filter(func(r *models.OrderRecord) bool {
		d, ok := r.DeliveryDays()
		return ok && d <= delayedAfterDays
	})
	if delayed.Empty() || onTime.Empty() {
		return msgNotEnoughDelayData
	}
	delayedMean, okDelayed := delayed.Mean(ReviewScore)
	onTimeMean, okOnTime := onTime.Mean(ReviewScore)
	if okDelayed && okOnTime && delayedMean < onTimeMean {
		return fmt.Sprintf("📉 **Sim, há uma correlação.** A nota média para entregas com atraso é **%s estrelas**, "+
			"enquanto para entregas no prazo é **%s estrelas**.", Rating(delayedMean), Rating(onTimeMean))
	}
	return msgNoCorrelation
}

func salesDay(in input, best bool) string {
	days := in.current.GroupBy(ByPurchaseDate, Sum, Payment)
	var picked []Group
	if best {
		picked = TopN(days, 1)
	} else {
		picked = BottomN(days, 1)
	}
	if len(picked) == 0 {
		return msgNoSalesDays
	}
	day, err := time.Parse(dateKeyLayout, picked[0].Key)
	if err != nil {
		return msgNoSalesDays
	}
	if best {
		return fmt.Sprintf("🚀 O melhor dia de vendas foi **%s**, faturando **%s**.", Date(day), Currency(picked[0].Value))
	}
	return fmt.Sprintf("🔧 O pior dia de vendas foi **%s**, faturando **%s**.", Date(day), Currency(picked[0].Value))
}

func bestSalesDay(in input) string { return salesDay(in, true) }
func worstSalesDay(in input) string { return salesDay(in, false) }

func topSellerByOrders(in input) string {
	top := TopN(in.current.CountBy(BySeller), 1)
	if len(top) == 0 {
		return msgNoSellers
	}
	share := float64(top[0].Count) / float64(in.current.Len()) * 100
	return fmt.Sprintf("🏆 A loja com mais pedidos é a **%s** com **%s** transações, sendo responsável por **%s** de todos os pedidos no período.",
		top[0].Key, Integer(top[0].Count), Percent(share))
}

func topSellerByTicket(in input) string {
	top := TopN(in.current.GroupBy(BySeller, Mean, Payment), 1)
	if len(top) == 0 {
		return msgNoSellers
	}
	return fmt.Sprintf("💰 A loja com o maior ticket médio é a **%s** (%s).", top[0].Key, Currency(top[0].Value))
}

func bestRatedSeller(in input) string {
	top := TopN(in.current.GroupBy(BySeller, Mean, ReviewScore), 1)
	if len(top) == 0 {
		return msgNoSellers
	}
	return fmt.Sprintf("⭐ A loja com a melhor avaliação é a **%s** (%s estrelas).", top[0].Key, Rating(top[0].Value))
}

func worstRatedSeller(in input) string {
	bottom := BottomN(in.current.GroupBy(BySeller, Mean, ReviewScore), 1)
	if len(bottom) == 0 {
		return msgNoSellers
	}
	return fmt.Sprintf("📉 A loja com a pior avaliação é a **%s** (%s estrelas).", bottom[0].Key, Rating(bottom[0].Value))
}

func activeSellers(in input) string {
	return fmt.Sprintf("🏬 Existem **%s** lojas ativas no período.", Integer(in.current.CountDistinct(BySeller)))
}

// AtRiskSellers counts sellers with many orders and a poor mean rating
func AtRiskSellers(s RecordSet) int {
	n := 0
	for _, g := range s.GroupBy(BySeller, Mean, ReviewScore) {
		if g.Valid && g.Count > atRiskMinOrders && g.Value < riskMaxScore {
			n++
		}
	}
	return n
}

func atRiskSellers(in input) string {
	n := AtRiskSellers(in.current)
	if n == 0 {
		return msgNoAtRisk
	}
	return fmt.Sprintf("🔍 Existem **%d lojas** em risco (com mais de 10 pedidos e avaliação média abaixo de 3.5).", n)
}

func topCategories(in input) string {
	top := TopN(in.current.CountBy(ByCategory), 3)
	if len(top) == 0 {
		return msgNoCategories
	}
	names := make([]string, len(top))
	for i, g := range top {
		names[i] = g.Key
	}
	return fmt.Sprintf("📦 As 3 categorias mais vendidas são: **%s**.", strings.Join(names, ", "))
}

func slowestDeliveryState(in input) string {
	top := TopN(in.current.GroupBy(ByState, Mean, DeliveryDays), 1)
	if len(top) == 0 {
		return msgNoDeliveries
	}
	return fmt.Sprintf("🚚 O estado com o **maior tempo de entrega** é **%s** (%s dias).", top[0].Key, Days(top[0].Value))
}

func fastestDeliveryState(in input) string {
	bottom := BottomN(in.current.GroupBy(ByState, Mean, DeliveryDays), 1)
	if len(bottom) == 0 {
		return msgNoDeliveries
	}
	return fmt.Sprintf("✅ O estado com o **menor tempo de entrega** é **%s** (%s dias).", bottom[0].Key, Days(bottom[0].Value))
}

// MonthOverMonth is the relative change in order count between the last two
// month buckets of s. ok is false with fewer than two buckets.
func MonthOverMonth(s RecordSet) (float64, bool) {
	months := SortByKey(s.CountBy(ByYearMonth))
	if len(months) < 2 {
		return 0, false
	}
	prev, last := months[len(months)-2].Value, months[len(months)-1].Value
	return (last - prev) / prev, true
}

func monthlySalesDrop(in input) string {
	change, ok := MonthOverMonth(in.current)
	if !ok {
		return msgNoMonthlyData
	}
	if change < monthlyDropAlert {
		return fmt.Sprintf("📉 **Alerta:** Houve uma queda de **%s** nas vendas no último mês do período.", SignedRatio(change))
	}
	return fmt.Sprintf("✅ **Análise:** Nenhuma queda significativa foi detectada. A variação foi de **%s** no último mês do período.", SignedRatio(change))
}

// previous returns the records of the window right before the compared period
func previous(in input) RecordSet {
	base, ok := comparisonBase(in.period, in.current)
	if !ok {
		return RecordSet{}
	}
	return in.history.InPeriod(Preceding(base))
}

// Variation is the percent change from previous to current.
// ok is false when previous is zero.
func Variation(current, previous float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// comparison phrases the change against the preceding window
func comparison(current, prev float64) string {
	v, ok := Variation(current, prev)
	if !ok {
		return msgNoPreviousData
	}
	switch {
	case v > stableBandPct:
		return fmt.Sprintf(" Isso representa uma variação de **%s** (alta) em relação ao período anterior (%s).", SignedPercent(v), Currency(prev))
	case v < -stableBandPct:
		return fmt.Sprintf(" Isso representa uma variação de **%s** (queda) em relação ao período anterior (%s).", SignedPercent(v), Currency(prev))
	}
	return msgStable
}

func revenueWithComparison(in input) string {
	current := in.current.Sum(Payment)
	prev := previous(in).Sum(Payment)
	return fmt.Sprintf("O faturamento no período foi de **%s**.", Currency(current)) + comparison(current, prev)
}

func meanTicketWithComparison(in input) string {
	current, _ := in.current.Mean(Payment)
	prev, _ := previous(in).Mean(Payment)
	return fmt.Sprintf("💰 O ticket médio no período foi de **%s**.", Currency(current)) + comparison(current, prev)
}

func uniqueCustomers(in input) string {
	return fmt.Sprintf("👥 O período teve **%s** clientes únicos.", Integer(in.current.CountDistinct(ByCustomer)))
}

func meanDeliveryTime(in input) string {
	days, ok := in.current.Mean(DeliveryDays)
	if !ok {
		return msgNoDeliveries
	}
	return fmt.Sprintf("⏱️ O tempo médio de entrega no período foi de **%s dias**.", Days(days))
}

func lateDeliveries(in input) string {
	share, _ := in.current.LateShare()
	return fmt.Sprintf("🔴 **%s** dos pedidos do período foram entregues com atraso.", Ratio(share))
}

func meanReview(in input) string {
	score, ok := in.current.Mean(ReviewScore)
	if !ok {
		return msgNoReviews
	}
	return fmt.Sprintf("⭐ A nota média das avaliações no período foi de **%s estrelas**.", Rating(score))
}

func meanFreight(in input) string {
	freight, _ := in.current.Mean(Freight)
	return fmt.Sprintf("🚚 O frete médio no período foi de **%s**.", Currency(freight))
}
