package domain

// AggregateSnapshot holds the comparative spending/earning statistics
// computed for one ingested transaction against the full historical set.
// The JSON field names are part of the API contract and must not change.
type AggregateSnapshot struct {
	HistoricalAverageSpending float64 `json:"historical_average_spending"`
	CurrentWeekSpending       float64 `json:"current_week_spending"`
	SpendingComparison        float64 `json:"spending_comparison"`
	HistoricalAverageEarnings float64 `json:"historical_average_earnings"`
	CurrentWeekEarnings       float64 `json:"current_week_earnings"`
	EarningsComparison        float64 `json:"earnings_comparison"`
	CurrentMonthSpending      float64 `json:"current_month_spending"`
	CurrentMonthEarnings      float64 `json:"current_month_earnings"`
	HistoricalMonthSpending   float64 `json:"historical_month_spending"`
	HistoricalMonthEarnings   float64 `json:"historical_month_earnings"`
	OverallSpending           float64 `json:"overall_spending"`
	OverallEarnings           float64 `json:"overall_earnings"`
}

// SnapshotRecord is one persisted entry of the append-only snapshot log.
// The ID is assigned by the store on append and is strictly increasing
// with insertion order; it is exposed to clients as an opaque string.
type SnapshotRecord struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	AggregateSnapshot
}
