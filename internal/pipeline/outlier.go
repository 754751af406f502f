package pipeline

import (
	"sort"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// FilterOutliers drops transactions whose amount falls outside
// [Q1-1.5*IQR, Q3+1.5*IQR], with quartiles computed by linear
// interpolation over the batch's amounts. It is an optional stage: the
// default ingestion flow does not invoke it, callers opt in explicitly.
func FilterOutliers(txs []*domain.Transaction) []*domain.Transaction {
	if len(txs) == 0 {
		return txs
	}

	amounts := make([]float64, len(txs))
	for i, t := range txs {
		amounts[i] = t.Amount
	}
	sort.Float64s(amounts)

	q1 := quantile(amounts, 0.25)
	q3 := quantile(amounts, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	out := make([]*domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Amount < lower || t.Amount > upper {
			continue
		}
		out = append(out, t)
	}
	return out
}

// quantile computes the q-th quantile of sorted values using linear
// interpolation between the two nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
