package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

type recordOpt func(*models.OrderRecord)

var orderSeq int

func order(seller string, purchased time.Time, payment float64, opts ...recordOpt) models.OrderRecord {
	orderSeq++
	r := models.OrderRecord{
		OrderID:       fmt.Sprintf("order-%d", orderSeq),
		SellerID:      seller,
		CustomerID:    fmt.Sprintf("customer-%d", orderSeq),
		CustomerState: "SP",
		CustomerCity:  "sao paulo",
		PurchasedAt:   purchased,
		PaymentValue:  payment,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 14, 30, 0, 0, time.UTC)
}

func deliveredAfter(days int) recordOpt {
	return func(r *models.OrderRecord) {
		r.DeliveredAt = sql.NullTime{Time: r.PurchasedAt.AddDate(0, 0, days), Valid: true}
	}
}

func estimatedAfter(days int) recordOpt {
	return func(r *models.OrderRecord) {
		r.EstimatedAt = sql.NullTime{Time: r.PurchasedAt.AddDate(0, 0, days), Valid: true}
	}
}

func reviewed(score float64) recordOpt {
	return func(r *models.OrderRecord) { r.ReviewScore = sql.NullFloat64{Float64: score, Valid: true} }
}

func category(name string) recordOpt {
	return func(r *models.OrderRecord) { r.ProductCategory = sql.NullString{String: name, Valid: true} }
}

func state(uf string) recordOpt {
	return func(r *models.OrderRecord) { r.CustomerState = uf }
}

func city(name string) recordOpt {
	return func(r *models.OrderRecord) { r.CustomerCity = name }
}

func customer(id string) recordOpt {
	return func(r *models.OrderRecord) { r.CustomerID = id }
}

func freight(v float64) recordOpt {
	return func(r *models.OrderRecord) { r.FreightValue = v }
}

func repeat(n int, build func(i int) models.OrderRecord) []models.OrderRecord {
	out := make([]models.OrderRecord, n)
	for i := range out {
		out[i] = build(i)
	}
	return out
}

func join(parts ...[]models.OrderRecord) []models.OrderRecord {
	var out []models.OrderRecord
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func set(records ...models.OrderRecord) RecordSet {
	return NewRecordSet(records)
}
