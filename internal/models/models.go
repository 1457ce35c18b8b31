package models

import (
	"database/sql"
	"math"
	"time"
)

// OrderRecord is one row of the joined order/customer/seller/review dataset
type OrderRecord struct {
	OrderID         string          `db:"order_id" json:"order_id"`
	SellerID        string          `db:"seller_id" json:"seller_id"`
	CustomerID      string          `db:"customer_id" json:"customer_id"`
	CustomerState   string          `db:"customer_state" json:"customer_state"`
	CustomerCity    string          `db:"customer_city" json:"customer_city"`
	PurchasedAt     time.Time       `db:"order_purchase_timestamp" json:"purchased_at"`
	DeliveredAt     sql.NullTime    `db:"order_delivered_customer_date" json:"-"`
	EstimatedAt     sql.NullTime    `db:"order_estimated_delivery_date" json:"-"`
	PaymentValue    float64         `db:"payment_value" json:"payment_value"`
	FreightValue    float64         `db:"freight_value" json:"freight_value"`
	ReviewScore     sql.NullFloat64 `db:"review_score" json:"-"`
	ProductCategory sql.NullString  `db:"product_category_name_english" json:"-"`
}

// DeliveryDays returns the whole days elapsed between purchase and delivery.
// The value is floored and may be negative on dirty rows.
func (r *OrderRecord) DeliveryDays() (float64, bool) {
	if !r.DeliveredAt.Valid {
		return 0, false
	}
	elapsed := r.DeliveredAt.Time.Sub(r.PurchasedAt)
	return math.Floor(elapsed.Hours() / 24), true
}

// IsLate reports whether the order was delivered after its estimated date
func (r *OrderRecord) IsLate() (late bool, known bool) {
	if !r.DeliveredAt.Valid || !r.EstimatedAt.Valid {
		return false, false
	}
	return r.DeliveredAt.Time.After(r.EstimatedAt.Time), true
}

// PurchaseDate returns the calendar date of the purchase in the record's own location
func (r *OrderRecord) PurchaseDate() time.Time {
	return DateOf(r.PurchasedAt)
}

// YearMonth returns the "2006-01" bucket of the purchase
func (r *OrderRecord) YearMonth() string {
	return r.PurchasedAt.Format("2006-01")
}

// Category returns the product category or "" when absent
func (r *OrderRecord) Category() string {
	if !r.ProductCategory.Valid {
		return ""
	}
	return r.ProductCategory.String
}

// DateOf strips the clock from t, keeping the calendar date as seen in t's location.
// Dates are represented as midnight UTC so day arithmetic is free of DST gaps.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Period is a closed interval of calendar dates
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod normalises both bounds to calendar dates
func NewPeriod(start, end time.Time) Period {
	return Period{Start: DateOf(start), End: DateOf(end)}
}

// IsZero reports whether the period was never set
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// Contains reports whether the calendar date d falls inside the period
func (p Period) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days covered, bounds included
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of a session transcript
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the explicit request context owned by the host UI
type Session struct {
	ID         string        `json:"id"`
	Period     Period        `json:"period"`
	Transcript []ChatMessage `json:"transcript"`
}
