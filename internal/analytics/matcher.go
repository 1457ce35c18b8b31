package analytics

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Intent identifies the recipe that answers a question
type Intent string

const (
	IntentRevenueConcentration Intent = "revenue_concentration"
	IntentSellerPerformance    Intent = "seller_performance"
	IntentDelayVsRating        Intent = "delay_vs_rating"
	IntentBestSalesDay         Intent = "best_sales_day"
	IntentWorstSalesDay        Intent = "worst_sales_day"
	IntentTopSellerByOrders    Intent = "top_seller_by_orders"
	IntentTopSellerByTicket    Intent = "top_seller_by_ticket"
	IntentBestRatedSeller      Intent = "best_rated_seller"
	IntentWorstRatedSeller     Intent = "worst_rated_seller"
	IntentActiveSellers        Intent = "active_sellers"
	IntentAtRiskSellers        Intent = "at_risk_sellers"
	IntentTopCategories        Intent = "top_categories"
	IntentSlowestDeliveryState Intent = "slowest_delivery_state"
	IntentFastestDeliveryState Intent = "fastest_delivery_state"
	IntentMonthlySalesDrop     Intent = "monthly_sales_drop"
	IntentRevenue              Intent = "revenue"
	IntentMeanTicket           Intent = "mean_ticket"
	IntentUniqueCustomers      Intent = "unique_customers"
	IntentMeanDeliveryTime     Intent = "mean_delivery_time"
	IntentLateDeliveries       Intent = "late_deliveries"
	IntentMeanReview           Intent = "mean_review"
	IntentMeanFreight          Intent = "mean_freight"
	IntentFallback             Intent = "fallback"
)

type predicate func(q string) bool

func has(sub string) predicate {
	return func(q string) bool { return strings.Contains(q, sub) }
}

func allOf(ps ...predicate) predicate {
	return func(q string) bool {
		for _, p := range ps {
			if !p(q) {
				return false
			}
		}
		return true
	}
}

func anyOf(ps ...predicate) predicate {
	return func(q string) bool {
		for _, p := range ps {
			if p(q) {
				return true
			}
		}
		return false
	}
}

func hasAll(subs ...string) predicate {
	ps := make([]predicate, len(subs))
	for i, s := range subs {
		ps[i] = has(s)
	}
	return allOf(ps...)
}

func hasAny(subs ...string) predicate {
	ps := make([]predicate, len(subs))
	for i, s := range subs {
		ps[i] = has(s)
	}
	return anyOf(ps...)
}

type rule struct {
	intent Intent
	match  predicate
}

// rules are tested in order and the first match wins. Multi-word phrases
// come before the loose single words they contain.
var rules = []rule{
	{IntentRevenueConcentration, hasAny("concentração", "concentradas")},
	{IntentSellerPerformance, hasAny("desempenho dos vendedores", "performance das lojas")},
	{IntentDelayVsRating, anyOf(hasAll("atrasadas", "avaliações ruins"), hasAll("atrasos", "avaliações"))},
	{IntentBestSalesDay, hasAll("melhor dia", "vendas")},
	{IntentWorstSalesDay, hasAll("pior dia", "vendas")},
	{IntentTopSellerByOrders, has("loja com mais pedidos")},
	{IntentTopSellerByTicket, hasAll("maior ticket", "loja")},
	{IntentBestRatedSeller, hasAll("melhor avaliação", "loja")},
	{IntentWorstRatedSeller, hasAll("pior avaliação", "loja")},
	{IntentActiveSellers, has("lojas ativas")},
	{IntentAtRiskSellers, anyOf(has("lojas em risco"), hasAll("risco", "loja"))},
	{IntentTopCategories, hasAny("3 categorias mais vendidas", "top 3 categorias", "quais as 3 categorias")},
	{IntentSlowestDeliveryState, allOf(has("pior"), hasAny("logística", "entrega"))},
	{IntentFastestDeliveryState, allOf(hasAny("melhor", "rápida", "menor"), hasAny("logística", "entrega"))},
	{IntentMonthlySalesDrop, hasAll("queda", "vendas")},
	{IntentRevenue, hasAny("faturamento", "vendas")},
	{IntentMeanTicket, has("ticket médio")},
	{IntentUniqueCustomers, hasAny("clientes únicos", "clientes unicos")},
	{IntentMeanDeliveryTime, has("tempo médio de entrega")},
	{IntentLateDeliveries, hasAny("pedidos com atraso", "taxa de atraso")},
	{IntentMeanReview, has("nota média")},
	{IntentMeanFreight, has("frete médio")},
}

// Match selects the intent of a free-text question
func Match(question string) Intent {
	q := normalize(question)
	if q == "" {
		return IntentFallback
	}
	for _, r := range rules {
		if r.match(q) {
			return r.intent
		}
	}
	return IntentFallback
}

// Intents lists every intent in matching order, Fallback last
func Intents() []Intent {
	out := make([]Intent, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.intent)
	}
	return append(out, IntentFallback)
}

// normalize composes accents so "ç" typed as c + cedilla still matches
func normalize(question string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(question)))
}
