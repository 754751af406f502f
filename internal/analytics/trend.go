package analytics

import (
	"errors"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// ErrInsufficientData is returned when fewer than three snapshots are
// supplied for trend comparison.
var ErrInsufficientData = errors.New("at least 3 analyses are required for comparison")

// DeltaPair holds the two deltas of one consecutive snapshot triple:
// second minus first, and third minus second.
type DeltaPair struct {
	FirstVsSecond float64 `json:"analysis1_vs_analysis2"`
	SecondVsThird float64 `json:"analysis2_vs_analysis3"`
}

// TrendComparison reports how one consecutive snapshot triple evolved.
// It is derived on demand and never persisted.
type TrendComparison struct {
	First  *domain.SnapshotRecord `json:"analysis1"`
	Second *domain.SnapshotRecord `json:"analysis2"`
	Third  *domain.SnapshotRecord `json:"analysis3"`

	Spending        DeltaPair `json:"spending_comparison"`
	Earnings        DeltaPair `json:"earnings_comparison"`
	MonthlySpending DeltaPair `json:"monthly_spending_comparison"`
	MonthlyEarnings DeltaPair `json:"monthly_earnings_comparison"`
}

// CompareSnapshots produces one comparison per consecutive overlapping
// triple of the given snapshots, which must be ordered chronologically
// (oldest first). N snapshots yield N-2 comparisons; fewer than 3
// return ErrInsufficientData. The input is never mutated.
func CompareSnapshots(snapshots []*domain.SnapshotRecord) ([]*TrendComparison, error) {
	if len(snapshots) < 3 {
		return nil, ErrInsufficientData
	}

	out := make([]*TrendComparison, 0, len(snapshots)-2)
	for i := 0; i+2 < len(snapshots); i++ {
		first, second, third := snapshots[i], snapshots[i+1], snapshots[i+2]
		out = append(out, &TrendComparison{
			First:  first,
			Second: second,
			Third:  third,
			Spending: DeltaPair{
				FirstVsSecond: second.CurrentWeekSpending - first.CurrentWeekSpending,
				SecondVsThird: third.CurrentWeekSpending - second.CurrentWeekSpending,
			},
			Earnings: DeltaPair{
				FirstVsSecond: second.CurrentWeekEarnings - first.CurrentWeekEarnings,
				SecondVsThird: third.CurrentWeekEarnings - second.CurrentWeekEarnings,
			},
			MonthlySpending: DeltaPair{
				FirstVsSecond: second.CurrentMonthSpending - first.CurrentMonthSpending,
				SecondVsThird: third.CurrentMonthSpending - second.CurrentMonthSpending,
			},
			MonthlyEarnings: DeltaPair{
				FirstVsSecond: second.CurrentMonthEarnings - first.CurrentMonthEarnings,
				SecondVsThird: third.CurrentMonthEarnings - second.CurrentMonthEarnings,
			},
		})
	}
	return out, nil
}
