// Package pipeline cleans raw transaction rows and derives their
// calendar features. The stages run in a fixed order with no I/O; rows
// that cannot be repaired are dropped rather than failing the batch,
// except for a missing date column which is a SchemaError at parse
// time.
package pipeline

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

const (
	incomeCategory   = "Income"
	fallbackCategory = "Miscellaneous"

	dateLayout = "2006-01-02"
)

// validCities maps each known city to its expected region. Rows whose
// city/region pair does not match are dropped during cleaning.
var validCities = map[string]string{
	"Philadelphia": "PA",
	"Chicago":      "IL",
	"New York":     "NY",
	"Los Angeles":  "CA",
	"San Jose":     "CA",
	"San Diego":    "CA",
	"San Antonio":  "TX",
	"Phoenix":      "AZ",
	"Dallas":       "TX",
	"Houston":      "TX",
}

// Clean runs the full cleaning sequence over a batch: date parsing,
// amount imputation, category fill, geographic validation and feature
// derivation. A single transaction goes through the same stages as a
// batch of one. The returned slice may be shorter than the input; it is
// never nil.
func Clean(records []RawRecord) []*domain.Transaction {
	rows := parseDates(records)
	rows = imputeAmounts(rows)
	rows = fillCategories(rows)
	rows = validateGeography(rows)
	return deriveFeatures(rows)
}

// parseDates parses each record's date strictly as YYYY-MM-DD. Rows
// that fail to parse are dropped; tolerating partial data is preferred
// over rejecting the batch.
func parseDates(records []RawRecord) []stageRow {
	rows := make([]stageRow, 0, len(records))
	for _, rec := range records {
		t, err := time.Parse(dateLayout, rec.Date)
		if err != nil {
			continue
		}
		rows = append(rows, stageRow{RawRecord: rec, date: civil.DateOf(t)})
	}
	return rows
}

// imputeAmounts fills missing amounts from the batch itself: rows
// categorized as Income get the mean of the observed positive amounts,
// all other rows get the median of the observed negative amounts. When
// the batch holds no amounts of the needed sign the row is dropped,
// since there is nothing to impute from.
func imputeAmounts(rows []stageRow) []stageRow {
	var positives, negatives []float64
	for _, r := range rows {
		if r.Amount == nil {
			continue
		}
		switch {
		case *r.Amount > 0:
			positives = append(positives, *r.Amount)
		case *r.Amount < 0:
			negatives = append(negatives, *r.Amount)
		}
	}

	meanIncome, hasIncome := mean(positives)
	medianExpense, hasExpense := median(negatives)

	out := rows[:0]
	for _, r := range rows {
		if r.Amount == nil {
			var fill float64
			if r.Category == incomeCategory {
				if !hasIncome {
					continue
				}
				fill = meanIncome
			} else {
				if !hasExpense {
					continue
				}
				fill = medianExpense
			}
			r.Amount = &fill
		}
		out = append(out, r)
	}
	return out
}

// fillCategories forces Income on every positive-amount row and fills
// missing categories on the rest with the batch's most frequent one,
// falling back to Miscellaneous when no category was observed at all.
func fillCategories(rows []stageRow) []stageRow {
	mostCommon := modeCategory(rows)

	for i := range rows {
		switch {
		case *rows[i].Amount > 0:
			rows[i].Category = incomeCategory
		case rows[i].Category == "":
			rows[i].Category = mostCommon
		}
	}
	return rows
}

// validateGeography drops rows whose city is unknown or whose region
// does not match the allow-list entry for that city.
func validateGeography(rows []stageRow) []stageRow {
	out := rows[:0]
	for _, r := range rows {
		region, ok := validCities[r.City]
		if !ok || region != r.Region {
			continue
		}
		out = append(out, r)
	}
	return out
}

// deriveFeatures computes the calendar features and produces immutable
// domain transactions. Rows without an ID are assigned a fresh UUID so
// that analysis results can always reference a transaction.
func deriveFeatures(rows []stageRow) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(rows))
	for _, r := range rows {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, &domain.Transaction{
			ID:            id,
			Date:          r.date,
			Amount:        *r.Amount,
			Merchant:      r.Merchant,
			Category:      r.Category,
			City:          r.City,
			Region:        r.Region,
			PaymentMethod: r.PaymentMethod,
			DayOfWeek:     DayOfWeek(r.date),
			WeekOfMonth:   WeekOfMonth(r.date.Day),
			Month:         int(r.date.Month),
			Year:          r.date.Year,
		})
	}
	return out
}

// modeCategory returns the most frequent non-empty category, breaking
// ties by lexicographic order, or Miscellaneous when none is observed.
func modeCategory(rows []stageRow) string {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Category != "" {
			counts[r.Category]++
		}
	}
	if len(counts) == 0 {
		return fallbackCategory
	}

	best := ""
	for cat, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && cat < best) {
			best = cat
		}
	}
	return best
}

func mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

func median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}
