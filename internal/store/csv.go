package store

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/limasantoss/marketplace-dash/internal/models"
)

// Timestamp layouts accepted in the export, most specific first
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

var requiredColumns = []string{
	"order_id",
	"seller_id",
	"order_purchase_timestamp",
	"payment_value",
}

// CSVOptions controls how the order export is cleaned on load
type CSVOptions struct {
	// Location the UTC timestamps are converted to. Defaults to UTC.
	Location *time.Location
	// DropUndelivered skips rows without a delivered timestamp
	DropUndelivered bool
}

// LoadCSV parses the cleaned order export. Columns are matched by header
// name; unknown columns are ignored. Rows whose purchase timestamp or
// payment cannot be parsed are skipped.
func LoadCSV(r io.Reader, opts CSVOptions) ([]models.OrderRecord, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var records []models.OrderRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue // skip malformed rows
			}
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		purchased, ok := parseTimestamp(cell("order_purchase_timestamp"), loc)
		if !ok {
			continue
		}
		payment, ok := parseAmount(cell("payment_value"))
		if !ok {
			continue
		}

		rec := models.OrderRecord{
			OrderID:       cell("order_id"),
			SellerID:      cell("seller_id"),
			CustomerID:    cell("customer_id"),
			CustomerState: cell("customer_state"),
			CustomerCity:  cell("customer_city"),
			PurchasedAt:   purchased,
			PaymentValue:  payment,
		}
		if v, ok := parseAmount(cell("freight_value")); ok {
			rec.FreightValue = v
		}
		if t, ok := parseTimestamp(cell("order_delivered_customer_date"), loc); ok {
			rec.DeliveredAt = sql.NullTime{Time: t, Valid: true}
		}
		if t, ok := parseTimestamp(cell("order_estimated_delivery_date"), loc); ok {
			rec.EstimatedAt = sql.NullTime{Time: t, Valid: true}
		}
		if v, ok := parseAmount(cell("review_score")); ok {
			rec.ReviewScore = sql.NullFloat64{Float64: v, Valid: true}
		}
		if c := cell("product_category_name_english"); c != "" {
			rec.ProductCategory = sql.NullString{String: c, Valid: true}
		}

		if opts.DropUndelivered && !rec.DeliveredAt.Valid {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseTimestamp reads a UTC timestamp and moves it to loc
// parseAmount parses a numeric cell. Blank, malformed and non-finite cells
// such as "nan" count as absent.
func parseAmount(value string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
