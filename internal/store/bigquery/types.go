package bigquery

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// TransactionRow is the BigQuery schema for the transactions table.
type TransactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	BatchID       string     `bigquery:"batch_id"`
	Date          civil.Date `bigquery:"date"`
	Amount        float64    `bigquery:"amount"`
	Merchant      string     `bigquery:"merchant"`
	Category      string     `bigquery:"category"`
	City          string     `bigquery:"city"`
	Region        string     `bigquery:"region"`
	PaymentMethod string     `bigquery:"payment_method"`
	DayOfWeek     int64      `bigquery:"day_of_week"`
	WeekOfMonth   int64      `bigquery:"week_of_month"`
	Month         int64      `bigquery:"month"`
	Year          int64      `bigquery:"year"`
	CreatedTS     time.Time  `bigquery:"created_ts"`
}

// SnapshotRow is the BigQuery schema for the analysis_snapshots table.
// SnapshotID is assigned at append time and increases with insertion
// order, which makes the table behave as an ordered log.
type SnapshotRow struct {
	SnapshotID                int64     `bigquery:"snapshot_id"`
	TransactionID             string    `bigquery:"transaction_id"`
	HistoricalAverageSpending float64   `bigquery:"historical_average_spending"`
	CurrentWeekSpending       float64   `bigquery:"current_week_spending"`
	SpendingComparison        float64   `bigquery:"spending_comparison"`
	HistoricalAverageEarnings float64   `bigquery:"historical_average_earnings"`
	CurrentWeekEarnings       float64   `bigquery:"current_week_earnings"`
	EarningsComparison        float64   `bigquery:"earnings_comparison"`
	CurrentMonthSpending      float64   `bigquery:"current_month_spending"`
	CurrentMonthEarnings      float64   `bigquery:"current_month_earnings"`
	HistoricalMonthSpending   float64   `bigquery:"historical_month_spending"`
	HistoricalMonthEarnings   float64   `bigquery:"historical_month_earnings"`
	OverallSpending           float64   `bigquery:"overall_spending"`
	OverallEarnings           float64   `bigquery:"overall_earnings"`
	CreatedTS                 time.Time `bigquery:"created_ts"`
}

// NarrativeRow is the BigQuery schema for the narratives table. One row
// is written per (transaction, strategy) pair.
type NarrativeRow struct {
	TransactionID string    `bigquery:"transaction_id"`
	Strategy      string    `bigquery:"strategy"`
	Narrative     string    `bigquery:"narrative"`
	CreatedTS     time.Time `bigquery:"created_ts"`
}

func transactionToRow(t *domain.Transaction, now time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID: t.ID,
		BatchID:       t.BatchID,
		Date:          t.Date,
		Amount:        t.Amount,
		Merchant:      t.Merchant,
		Category:      t.Category,
		City:          t.City,
		Region:        t.Region,
		PaymentMethod: t.PaymentMethod,
		DayOfWeek:     int64(t.DayOfWeek),
		WeekOfMonth:   int64(t.WeekOfMonth),
		Month:         int64(t.Month),
		Year:          int64(t.Year),
		CreatedTS:     now,
	}
}

func rowToTransaction(r *TransactionRow) *domain.Transaction {
	return &domain.Transaction{
		ID:            r.TransactionID,
		BatchID:       r.BatchID,
		Date:          r.Date,
		Amount:        r.Amount,
		Merchant:      r.Merchant,
		Category:      r.Category,
		City:          r.City,
		Region:        r.Region,
		PaymentMethod: r.PaymentMethod,
		DayOfWeek:     int(r.DayOfWeek),
		WeekOfMonth:   int(r.WeekOfMonth),
		Month:         int(r.Month),
		Year:          int(r.Year),
	}
}

func snapshotToRow(id int64, transactionID string, s domain.AggregateSnapshot, now time.Time) *SnapshotRow {
	return &SnapshotRow{
		SnapshotID:                id,
		TransactionID:             transactionID,
		HistoricalAverageSpending: s.HistoricalAverageSpending,
		CurrentWeekSpending:       s.CurrentWeekSpending,
		SpendingComparison:        s.SpendingComparison,
		HistoricalAverageEarnings: s.HistoricalAverageEarnings,
		CurrentWeekEarnings:       s.CurrentWeekEarnings,
		EarningsComparison:        s.EarningsComparison,
		CurrentMonthSpending:      s.CurrentMonthSpending,
		CurrentMonthEarnings:      s.CurrentMonthEarnings,
		HistoricalMonthSpending:   s.HistoricalMonthSpending,
		HistoricalMonthEarnings:   s.HistoricalMonthEarnings,
		OverallSpending:           s.OverallSpending,
		OverallEarnings:           s.OverallEarnings,
		CreatedTS:                 now,
	}
}

func rowToSnapshot(r *SnapshotRow) *domain.SnapshotRecord {
	return &domain.SnapshotRecord{
		ID:            formatSnapshotID(r.SnapshotID),
		TransactionID: r.TransactionID,
		AggregateSnapshot: domain.AggregateSnapshot{
			HistoricalAverageSpending: r.HistoricalAverageSpending,
			CurrentWeekSpending:       r.CurrentWeekSpending,
			SpendingComparison:        r.SpendingComparison,
			HistoricalAverageEarnings: r.HistoricalAverageEarnings,
			CurrentWeekEarnings:       r.CurrentWeekEarnings,
			EarningsComparison:        r.EarningsComparison,
			CurrentMonthSpending:      r.CurrentMonthSpending,
			CurrentMonthEarnings:      r.CurrentMonthEarnings,
			HistoricalMonthSpending:   r.HistoricalMonthSpending,
			HistoricalMonthEarnings:   r.HistoricalMonthEarnings,
			OverallSpending:           r.OverallSpending,
			OverallEarnings:           r.OverallEarnings,
		},
	}
}
