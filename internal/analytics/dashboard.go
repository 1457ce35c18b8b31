package analytics

import (
	"sort"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// NorthNortheastStates are the customer states covered by the regional view
var NorthNortheastStates = []string{
	"AC", "AP", "AM", "PA", "RO", "RR", "TO",
	"AL", "BA", "CE", "MA", "PB", "PE", "PI", "RN", "SE",
}

// Overview holds the headline KPIs of a period. Means are nil when the
// period has nothing to average.
type Overview struct {
	Orders           int      `json:"orders"`
	UniqueCustomers  int      `json:"unique_customers"`
	MeanTicket       *float64 `json:"mean_ticket"`
	MeanDeliveryDays *float64 `json:"mean_delivery_days"`
	ActiveSellers    int      `json:"active_sellers"`
	MeanReviewScore  *float64 `json:"mean_review_score"`
	OrdersByMonth    []Group  `json:"orders_by_month"`
	TicketByMonth    []Group  `json:"ticket_by_month"`
	TopCategories    []Group  `json:"top_categories"`
	OrdersByState    []Group  `json:"orders_by_state"`
}

// SellerRanking lists the leading sellers of a period
type SellerRanking struct {
	TopByOrders []Group `json:"top_by_orders"`
	TopByTicket []Group `json:"top_by_ticket"`
	TopByRating []Group `json:"top_by_rating"`
	Tiers       Tiers   `json:"tiers"`
}

// Logistics compares delivery speed and freight across states and sellers
type Logistics struct {
	DeliveryByState []Group `json:"delivery_by_state"`
	FreightByState  []Group `json:"freight_by_state"`
	FastestSellers  []Group `json:"fastest_sellers"`
	SlowestSellers  []Group `json:"slowest_sellers"`
}

// RegionalLogistics is the North/Northeast delivery view
type RegionalLogistics struct {
	States           []string `json:"states"`
	Cities           []string `json:"cities"`
	SelectedCities   []string `json:"selected_cities"`
	Orders           int      `json:"orders"`
	MeanDeliveryDays *float64 `json:"mean_delivery_days"`
	MeanFreight      *float64 `json:"mean_freight"`
	LatePercent      *float64 `json:"late_percent"`
	OrdersByState    []Group  `json:"orders_by_state"`
	FreightByState   []Group  `json:"freight_by_state"`
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// BuildOverview computes the overview page of a period
func BuildOverview(s RecordSet) Overview {
	ticket, okTicket := s.Mean(Payment)
	delivery, okDelivery := s.Mean(DeliveryDays)
	review, okReview := s.Mean(ReviewScore)
	return Overview{
		Orders:           s.Len(),
		UniqueCustomers:  s.CountDistinct(ByCustomer),
		MeanTicket:       optional(ticket, okTicket),
		MeanDeliveryDays: optional(delivery, okDelivery),
		ActiveSellers:    s.CountDistinct(BySeller),
		MeanReviewScore:  optional(review, okReview),
		OrdersByMonth:    SortByKey(s.CountBy(ByYearMonth)),
		TicketByMonth:    SortByKey(s.GroupBy(ByYearMonth, Mean, Payment)),
		TopCategories:    TopN(s.CountBy(ByCategory), 10),
		OrdersByState:    TopN(s.CountBy(ByState), -1),
	}
}

// BuildSellerRanking computes the seller page of a period
func BuildSellerRanking(s RecordSet) SellerRanking {
	return SellerRanking{
		TopByOrders: TopN(s.CountBy(BySeller), 10),
		TopByTicket: TopN(s.GroupBy(BySeller, Mean, Payment), 10),
		TopByRating: TopN(s.GroupBy(BySeller, Mean, ReviewScore), 10),
		Tiers:       TierSellers(s),
	}
}

// BuildLogistics computes the logistics page of a period
func BuildLogistics(s RecordSet) Logistics {
	sellerDelivery := s.GroupBy(BySeller, Mean, DeliveryDays)
	return Logistics{
		DeliveryByState: BottomN(s.GroupBy(ByState, Mean, DeliveryDays), -1),
		FreightByState:  BottomN(s.GroupBy(ByState, Mean, Freight), -1),
		FastestSellers:  BottomN(sellerDelivery, 5),
		SlowestSellers:  TopN(sellerDelivery, 5),
	}
}

// BuildRegionalLogistics computes the North/Northeast view, optionally
// narrowed to the given customer cities
func BuildRegionalLogistics(s RecordSet, cities []string) RegionalLogistics {
	allowed := make(map[string]bool, len(NorthNortheastStates))
	for _, st := range NorthNortheastStates {
		allowed[st] = true
	}
	region := s.Filter(func(r *models.OrderRecord) bool { return allowed[r.CustomerState] })

	available := make([]string, 0)
	for _, g := range region.CountBy(ByCity) {
		available = append(available, g.Key)
	}
	sort.Strings(available)

	selected := region
	if len(cities) > 0 {
		wanted := make(map[string]bool, len(cities))
		for _, c := range cities {
			wanted[c] = true
		}
		selected = region.Filter(func(r *models.OrderRecord) bool { return wanted[r.CustomerCity] })
	}

	delivery, okDelivery := selected.Mean(DeliveryDays)
	freight, okFreight := selected.Mean(Freight)
	late, okLate := selected.LateShare()
	return RegionalLogistics{
		States:           NorthNortheastStates,
		Cities:           available,
		SelectedCities:   append([]string{}, cities...),
		Orders:           selected.Len(),
		MeanDeliveryDays: optional(delivery, okDelivery),
		MeanFreight:      optional(freight, okFreight),
		LatePercent:      optional(late*100, okLate),
		OrdersByState:    TopN(selected.CountBy(ByState), -1),
		FreightByState:   TopN(selected.GroupBy(ByState, Mean, Freight), -1),
	}
}
