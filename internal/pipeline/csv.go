package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV reads an uploaded CSV batch into raw records. Header names
// are normalized by trimming whitespace and lowercasing; a batch
// without a date column after normalization is rejected with a
// SchemaError. Unknown columns are ignored. Missing or non-numeric
// amounts become nil and are left to the imputation stage.
func ParseCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Column: "date"}
	}
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["date"]; !ok {
		return nil, &SchemaError{Column: "date"}
	}

	var records []RawRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: reading row: %w", err)
		}

		rec := RawRecord{
			ID:            cell(fields, cols, "transaction_id"),
			Date:          cell(fields, cols, "date"),
			Merchant:      cell(fields, cols, "merchant"),
			Category:      cell(fields, cols, "category"),
			City:          cell(fields, cols, "city"),
			Region:        cell(fields, cols, "region"),
			PaymentMethod: cell(fields, cols, "payment_method"),
		}
		if raw := cell(fields, cols, "amount"); raw != "" {
			if amount, err := strconv.ParseFloat(raw, 64); err == nil {
				rec.Amount = &amount
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func cell(fields []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}
