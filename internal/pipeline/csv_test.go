package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSV_NormalizesHeaders(t *testing.T) {
	input := " Transaction_ID , DATE ,Amount,Merchant,Category,City,Region,Payment_Method\n" +
		"t1,2024-03-01,-12.50,Acme,Dining,Chicago,IL,Credit Card\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ID != "t1" || rec.Date != "2024-03-01" || rec.Merchant != "Acme" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Amount == nil || !floatEq(*rec.Amount, -12.5) {
		t.Errorf("amount = %v, want -12.5", rec.Amount)
	}
}

func TestParseCSV_MissingDateColumn(t *testing.T) {
	input := "transaction_id,amount\nt1,-5\n"

	_, err := ParseCSV(strings.NewReader(input))

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "date" {
		t.Errorf("SchemaError.Column = %q, want date", schemaErr.Column)
	}
}

func TestParseCSV_EmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for empty input, got %v", err)
	}
}

func TestParseCSV_BadAmountBecomesNil(t *testing.T) {
	input := "transaction_id,date,amount\n" +
		"t1,2024-03-01,not-a-number\n" +
		"t2,2024-03-02,\n" +
		"t3,2024-03-03,42\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}

	if records[0].Amount != nil {
		t.Errorf("non-numeric amount should be nil, got %v", *records[0].Amount)
	}
	if records[1].Amount != nil {
		t.Errorf("empty amount should be nil, got %v", *records[1].Amount)
	}
	if records[2].Amount == nil || *records[2].Amount != 42 {
		t.Errorf("numeric amount lost: %v", records[2].Amount)
	}
}

func TestParseCSV_ShortRows(t *testing.T) {
	input := "transaction_id,date,amount,merchant\n" +
		"t1,2024-03-01\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}
	if records[0].Amount != nil || records[0].Merchant != "" {
		t.Errorf("missing trailing cells should be empty: %+v", records[0])
	}
}
