package store

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `order_id,customer_id,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date,customer_city,customer_state,seller_id,payment_value,freight_value,review_score,product_category_name_english
o1,c1,2018-05-10 02:30:00,2018-05-20 15:00:00,2018-05-25 00:00:00,salvador,BA,s1,120.50,15.2,5,toys
o2,c2,2018-05-11 12:00:00,,2018-05-30,recife,PE,s2,80,,,
o3,c3,not a date,2018-05-20 15:00:00,,sao paulo,SP,s1,10,1,4,books
o4,c4,2018-05-12,2018-05-14 10:00:00,2018-05-13,sao paulo,SP,s3,oops,1,4,books
`

func TestLoadCSV(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	records, err := LoadCSV(strings.NewReader(sampleExport), CSVOptions{Location: saoPaulo})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "o1", first.OrderID)
	assert.Equal(t, "s1", first.SellerID)
	assert.Equal(t, "BA", first.CustomerState)
	assert.Equal(t, "salvador", first.CustomerCity)
	assert.Equal(t, 120.50, first.PaymentValue)
	assert.Equal(t, 15.2, first.FreightValue)
	assert.True(t, first.ReviewScore.Valid)
	assert.Equal(t, 5.0, first.ReviewScore.Float64)
	assert.Equal(t, "toys", first.Category())

	// 02:30 UTC is still the previous evening in Sao Paulo
	assert.Equal(t, saoPaulo, first.PurchasedAt.Location())
	assert.Equal(t, 9, first.PurchasedAt.Day())
	assert.Equal(t, "2018-05", first.YearMonth())
	days, ok := first.DeliveryDays()
	require.True(t, ok)
	assert.Equal(t, 10.0, days)

	second := records[1]
	assert.False(t, second.DeliveredAt.Valid)
	assert.True(t, second.EstimatedAt.Valid)
	assert.False(t, second.ReviewScore.Valid)
	assert.False(t, second.ProductCategory.Valid)
	assert.Zero(t, second.FreightValue)
}

func TestLoadCSVDropUndelivered(t *testing.T) {
	records, err := LoadCSV(strings.NewReader(sampleExport), CSVOptions{DropUndelivered: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "o1", records[0].OrderID)
	assert.Equal(t, time.UTC, records[0].PurchasedAt.Location())
}

func TestLoadCSVMissingColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("order_id,seller_id,payment_value\no1,s1,10\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_purchase_timestamp")
}

func TestLoadCSVEmptyInput(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""), CSVOptions{})
	assert.Error(t, err)
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	records, err := LoadCSV(strings.NewReader("\ufeffOrder_ID,seller_id,order_purchase_timestamp,payment_value\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadCSVNonFiniteNumbers(t *testing.T) {
	export := `order_id,seller_id,order_purchase_timestamp,payment_value,freight_value,review_score
o1,s1,2018-05-10 10:00:00,50,nan,NaN
o2,s1,2018-05-11 10:00:00,NaN,5,4
o3,s2,2018-05-12 10:00:00,Inf,5,4
o4,s2,2018-05-13 10:00:00,30,+Inf,-inf
`
	records, err := LoadCSV(strings.NewReader(export), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.False(t, math.IsNaN(r.PaymentValue), r.OrderID)
		assert.False(t, math.IsNaN(r.FreightValue) || math.IsInf(r.FreightValue, 0), r.OrderID)
		assert.Zero(t, r.FreightValue, r.OrderID)
		assert.False(t, r.ReviewScore.Valid, r.OrderID)
	}
	assert.Equal(t, "o1", records[0].OrderID)
	assert.Equal(t, "o4", records[1].OrderID)
}
