package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/ingest"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store/memory"
)

func newTestHandler() (*TransactionsHandler, *memory.Store) {
	db := memory.New()
	orch := ingest.NewOrchestrator(db, db, zerolog.Nop())
	return NewTransactionsHandler(orch, db, nil, zerolog.Nop()), db
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestHealth_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUploadSingleTransaction_SavedBelowThreshold(t *testing.T) {
	h, _ := newTestHandler()

	payload := `{"transaction_id":"t1","date":"2024-03-15","amount":-20,"merchant":"Acme","category":"Dining","city":"Chicago","region":"IL","payment_method":"Credit Card"}`
	rec := httptest.NewRecorder()
	h.UploadSingleTransaction(rec, httptest.NewRequest(http.MethodPost, "/upload_single_transaction/", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status field = %v, want success", body["status"])
	}
	if body["message"] != ingest.NotEnoughDataMessage {
		t.Errorf("message = %v, want the not-enough-data message", body["message"])
	}
	if body["uuid"] == "" || body["uuid"] == nil {
		t.Error("expected a uuid in the response")
	}
}

func TestUploadSingleTransaction_MissingAmount(t *testing.T) {
	h, _ := newTestHandler()

	payload := `{"transaction_id":"t1","date":"2024-03-15","city":"Chicago","region":"IL"}`
	rec := httptest.NewRecorder()
	h.UploadSingleTransaction(rec, httptest.NewRequest(http.MethodPost, "/upload_single_transaction/", strings.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadSingleTransaction_RejectedByCleaning(t *testing.T) {
	h, _ := newTestHandler()

	payload := `{"transaction_id":"t1","date":"15/03/2024","amount":-20,"city":"Chicago","region":"IL"}`
	rec := httptest.NewRecorder()
	h.UploadSingleTransaction(rec, httptest.NewRequest(http.MethodPost, "/upload_single_transaction/", strings.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] == nil {
		t.Errorf("expected an error field, got %v", body)
	}
}

func TestUploadSingleTransaction_AnalyzedResponseShape(t *testing.T) {
	h, db := newTestHandler()
	ctx := context.Background()

	// Seed the store past the analysis threshold.
	seed := make([]*domain.Transaction, 0, ingest.MinTransactionsForAnalysis)
	for i := 0; i < ingest.MinTransactionsForAnalysis; i++ {
		seed = append(seed, &domain.Transaction{
			ID: fmt.Sprintf("seed%d", i), Amount: -10,
			Year: 2024, Month: 2, WeekOfMonth: i%4 + 1,
		})
	}
	if err := db.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	payload := `{"transaction_id":"t1","date":"2024-03-15","amount":-20,"merchant":"Acme","category":"Dining","city":"Chicago","region":"IL","payment_method":"Credit Card"}`
	rec := httptest.NewRecorder()
	h.UploadSingleTransaction(rec, httptest.NewRequest(http.MethodPost, "/upload_single_transaction/", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)

	// The snapshot fields are inlined at the top level under their
	// contract names.
	for _, field := range []string{
		"historical_average_spending", "current_week_spending", "spending_comparison",
		"historical_average_earnings", "current_week_earnings", "earnings_comparison",
		"current_month_spending", "current_month_earnings",
		"historical_month_spending", "historical_month_earnings",
		"overall_spending", "overall_earnings",
	} {
		if _, ok := body[field]; !ok {
			t.Errorf("response missing snapshot field %q", field)
		}
	}
	if body["current_week_spending"] != -20.0 {
		t.Errorf("current_week_spending = %v, want -20", body["current_week_spending"])
	}
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadTransactions_SavedBelowThreshold(t *testing.T) {
	h, db := newTestHandler()

	csv := "transaction_id,date,amount,merchant,category,city,region,payment_method\n" +
		"t1,2024-03-01,-10,Acme,Dining,Chicago,IL,Credit Card\n" +
		"t2,2024-03-02,-20,Acme,Dining,Chicago,IL,Credit Card\n"
	body, contentType := multipartCSV(t, csv)

	req := httptest.NewRequest(http.MethodPost, "/upload_transactions/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["message"] != ingest.NotEnoughDataMessage {
		t.Errorf("message = %v, want the not-enough-data message", resp["message"])
	}

	total, err := db.CountTransactions(context.Background())
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	if total != 2 {
		t.Errorf("stored %d transactions, want 2", total)
	}
}

func TestUploadTransactions_MissingDateColumn(t *testing.T) {
	h, _ := newTestHandler()

	body, contentType := multipartCSV(t, "transaction_id,amount\nt1,-5\n")
	req := httptest.NewRequest(http.MethodPost, "/upload_transactions/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadTransactions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeBody(t, rec)
	errMsg, _ := resp["error"].(string)
	if !strings.Contains(errMsg, "date") {
		t.Errorf("error = %q, want a missing-date-column message", errMsg)
	}
}

func TestUploadTransactions_MissingFileField(t *testing.T) {
	h, _ := newTestHandler()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("other", "value"); err != nil {
		t.Fatalf("writing field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload_transactions/", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadTransactions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCompareLastThreeAnalyses_NotEnough(t *testing.T) {
	h, db := newTestHandler()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := db.AppendSnapshot(ctx, "t", domain.AggregateSnapshot{}); err != nil {
			t.Fatalf("AppendSnapshot: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.CompareLastThreeAnalyses(rec, httptest.NewRequest(http.MethodGet, "/compare_last_three_analyses/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["error"] != "Not enough past analyses found for comparison" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestCompareLastThreeAnalyses_ChronologicalDeltas(t *testing.T) {
	h, db := newTestHandler()
	ctx := context.Background()

	// Appended oldest to newest.
	for _, spend := range []float64{100, 150, 130} {
		snap := domain.AggregateSnapshot{CurrentWeekSpending: spend}
		if _, err := db.AppendSnapshot(ctx, "t", snap); err != nil {
			t.Fatalf("AppendSnapshot: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.CompareLastThreeAnalyses(rec, httptest.NewRequest(http.MethodGet, "/compare_last_three_analyses/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			Spending struct {
				FirstVsSecond float64 `json:"analysis1_vs_analysis2"`
				SecondVsThird float64 `json:"analysis2_vs_analysis3"`
			} `json:"spending_comparison"`
		} `json:"comparison_results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(resp.Results))
	}
	if resp.Results[0].Spending.FirstVsSecond != 50 || resp.Results[0].Spending.SecondVsThird != -20 {
		t.Errorf("spending deltas = %+v, want {50 -20}", resp.Results[0].Spending)
	}
}
