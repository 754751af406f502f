// Package analytics computes comparative spending/earning statistics
// over a caller-supplied snapshot of the historical transaction set.
// Every function is pure and re-entrant: the caller reads the set once
// per ingestion event and passes the same slice to each computation to
// avoid read skew.
package analytics

import (
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// HistoricalAverageSpending returns the mean of negative amounts among
// rows in the same week-of-month bucket but outside the target
// (year, month) pair. Returns 0 when no such rows exist.
func HistoricalAverageSpending(txs []*domain.Transaction, year, month, week int) float64 {
	sum, n := 0.0, 0
	for _, t := range txs {
		if sameMonth(t, year, month) || t.WeekOfMonth != week {
			continue
		}
		if t.Amount < 0 {
			sum += t.Amount
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HistoricalAverageEarnings is the positive-amount counterpart of
// HistoricalAverageSpending.
func HistoricalAverageEarnings(txs []*domain.Transaction, year, month, week int) float64 {
	sum, n := 0.0, 0
	for _, t := range txs {
		if sameMonth(t, year, month) || t.WeekOfMonth != week {
			continue
		}
		if t.Amount > 0 {
			sum += t.Amount
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CurrentWeekSpending returns the sum of negative amounts for rows
// exactly matching (year, month, week).
func CurrentWeekSpending(txs []*domain.Transaction, year, month, week int) float64 {
	sum := 0.0
	for _, t := range txs {
		if sameMonth(t, year, month) && t.WeekOfMonth == week && t.Amount < 0 {
			sum += t.Amount
		}
	}
	return sum
}

// CurrentWeekEarnings returns the sum of positive amounts for rows
// exactly matching (year, month, week).
func CurrentWeekEarnings(txs []*domain.Transaction, year, month, week int) float64 {
	sum := 0.0
	for _, t := range txs {
		if sameMonth(t, year, month) && t.WeekOfMonth == week && t.Amount > 0 {
			sum += t.Amount
		}
	}
	return sum
}

// MonthlyTotals returns the spending and earning sums for rows matching
// (year, month).
func MonthlyTotals(txs []*domain.Transaction, year, month int) (spent, earned float64) {
	for _, t := range txs {
		if !sameMonth(t, year, month) {
			continue
		}
		if t.Amount < 0 {
			spent += t.Amount
		} else if t.Amount > 0 {
			earned += t.Amount
		}
	}
	return spent, earned
}

// HistoricalMonthlyTotals returns the spending and earning sums over
// every row outside the target (year, month) pair.
func HistoricalMonthlyTotals(txs []*domain.Transaction, year, month int) (spent, earned float64) {
	for _, t := range txs {
		if sameMonth(t, year, month) {
			continue
		}
		if t.Amount < 0 {
			spent += t.Amount
		} else if t.Amount > 0 {
			earned += t.Amount
		}
	}
	return spent, earned
}

// OverallTotals returns the spending and earning sums over the entire
// set with no filtering.
func OverallTotals(txs []*domain.Transaction) (spent, earned float64) {
	for _, t := range txs {
		if t.Amount < 0 {
			spent += t.Amount
		} else if t.Amount > 0 {
			earned += t.Amount
		}
	}
	return spent, earned
}

// Analyze composes the window computations into one snapshot for the
// target (year, month, week).
func Analyze(txs []*domain.Transaction, year, month, week int) domain.AggregateSnapshot {
	historicalSpending := HistoricalAverageSpending(txs, year, month, week)
	historicalEarnings := HistoricalAverageEarnings(txs, year, month, week)
	weekSpending := CurrentWeekSpending(txs, year, month, week)
	weekEarnings := CurrentWeekEarnings(txs, year, month, week)
	monthSpent, monthEarned := MonthlyTotals(txs, year, month)
	histMonthSpent, histMonthEarned := HistoricalMonthlyTotals(txs, year, month)
	overallSpent, overallEarned := OverallTotals(txs)

	return domain.AggregateSnapshot{
		HistoricalAverageSpending: historicalSpending,
		CurrentWeekSpending:       weekSpending,
		SpendingComparison:        weekSpending - historicalSpending,
		HistoricalAverageEarnings: historicalEarnings,
		CurrentWeekEarnings:       weekEarnings,
		EarningsComparison:        weekEarnings - historicalEarnings,
		CurrentMonthSpending:      monthSpent,
		CurrentMonthEarnings:      monthEarned,
		HistoricalMonthSpending:   histMonthSpent,
		HistoricalMonthEarnings:   histMonthEarned,
		OverallSpending:           overallSpent,
		OverallEarnings:           overallEarned,
	}
}

func sameMonth(t *domain.Transaction, year, month int) bool {
	return t.Year == year && t.Month == month
}
