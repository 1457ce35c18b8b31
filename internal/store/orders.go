package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

const orderRecordsSelect = `
	SELECT order_id, seller_id,
		COALESCE(customer_id, '') AS customer_id,
		COALESCE(customer_state, '') AS customer_state,
		COALESCE(customer_city, '') AS customer_city,
		order_purchase_timestamp, order_delivered_customer_date, order_estimated_delivery_date,
		payment_value,
		COALESCE(freight_value, 0) AS freight_value,
		review_score, product_category_name_english
	FROM marketplace_orders`

const (
	deliveredOnly = `
	WHERE order_delivered_customer_date IS NOT NULL`
	naturalOrder = `
	ORDER BY order_purchase_timestamp, order_id`
)

// LoadOrderRecords reads the whole order dataset. Timestamps are stored in
// UTC and returned in loc.
func (s *Store) LoadOrderRecords(ctx context.Context, loc *time.Location, dropUndelivered bool) ([]models.OrderRecord, error) {
	query := orderRecordsSelect
	if dropUndelivered {
		query += deliveredOnly
	}
	query += naturalOrder

	var records []models.OrderRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to load order records: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}
	kept := records[:0]
	for i := range records {
		r := records[i]
		if !finite(r.PaymentValue) {
			continue
		}
		if !finite(r.FreightValue) {
			r.FreightValue = 0
		}
		if r.ReviewScore.Valid && !finite(r.ReviewScore.Float64) {
			r.ReviewScore = sql.NullFloat64{}
		}
		r.PurchasedAt = r.PurchasedAt.In(loc)
		if r.DeliveredAt.Valid {
			r.DeliveredAt.Time = r.DeliveredAt.Time.In(loc)
		}
		if r.EstimatedAt.Valid {
			r.EstimatedAt.Time = r.EstimatedAt.Time.In(loc)
		}
		kept = append(kept, r)
	}
	return kept, nil
}
