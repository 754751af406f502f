package pipeline

import (
	"cloud.google.com/go/civil"
)

// RawRecord is one transaction row as received at the ingestion
// boundary, before cleaning. A nil Amount means the value was absent
// and must be imputed; an empty Category means unobserved.
type RawRecord struct {
	ID            string
	Date          string // expected YYYY-MM-DD
	Amount        *float64
	Merchant      string
	Category      string
	City          string
	Region        string
	PaymentMethod string
}

// stageRow carries a raw record through the cleaning stages together
// with its parsed calendar date.
type stageRow struct {
	RawRecord
	date civil.Date
}
