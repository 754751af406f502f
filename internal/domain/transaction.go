package domain

import (
	"cloud.google.com/go/civil"
)

// Transaction represents one cleaned, feature-enriched bank transaction.
// This is a domain struct, not a BigQuery row; the store layer maps it
// into the transactions table schema. Instances are immutable once the
// derived calendar fields have been computed by the pipeline.
type Transaction struct {
	ID            string     `json:"transaction_id"`
	Date          civil.Date `json:"date"`
	Amount        float64    `json:"amount"` // negative = spend, positive = earning
	Merchant      string     `json:"merchant"`
	Category      string     `json:"category"`
	City          string     `json:"city"`
	Region        string     `json:"region"`
	PaymentMethod string     `json:"payment_method"`

	// Calendar features derived from Date.
	DayOfWeek   int `json:"day_of_week"`   // 0=Monday .. 6=Sunday
	WeekOfMonth int `json:"week_of_month"` // (day-1)/7 + 1, range 1..5
	Month       int `json:"month"`
	Year        int `json:"year"`

	// BatchID tags every row ingested in the same upload event.
	BatchID string `json:"uuid"`
}
