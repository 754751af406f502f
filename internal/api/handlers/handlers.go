// Package handlers implements the HTTP surface of the analytics
// backend. Analysis responses expose the snapshot fields under their
// exact contract names via the embedded domain.AggregateSnapshot.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/analytics"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/api/middleware"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/ingest"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/jobs"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/pipeline"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
)

// maxUploadBytes caps multipart CSV uploads.
const maxUploadBytes = 32 << 20

// TransactionsHandler serves the ingestion and comparison endpoints.
type TransactionsHandler struct {
	orch    *ingest.Orchestrator
	snapLog store.SnapshotLog
	archive jobs.Publisher // nil disables batch archival
	log     zerolog.Logger
}

// NewTransactionsHandler creates a handler. archive may be nil when no
// bucket is configured.
func NewTransactionsHandler(orch *ingest.Orchestrator, snapLog store.SnapshotLog, archive jobs.Publisher, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		orch:    orch,
		snapLog: snapLog,
		archive: archive,
		log:     log,
	}
}

// transactionRequest is the JSON body of a single-transaction upload.
type transactionRequest struct {
	TransactionID string   `json:"transaction_id"`
	Date          string   `json:"date"`
	Amount        *float64 `json:"amount"`
	Merchant      string   `json:"merchant"`
	Category      string   `json:"category"`
	City          string   `json:"city"`
	Region        string   `json:"region"`
	PaymentMethod string   `json:"payment_method"`
	UUID          string   `json:"uuid"`
}

type analyzedResponse struct {
	Status string `json:"status"`
	UUID   string `json:"uuid"`
	domain.AggregateSnapshot
}

type savedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UUID    string `json:"uuid"`
}

// UploadSingleTransaction handles POST /upload_single_transaction/.
func (h *TransactionsHandler) UploadSingleTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Date == "" {
		middleware.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}
	if req.Amount == nil {
		middleware.WriteError(w, http.StatusBadRequest, "amount is required")
		return
	}

	rec := pipeline.RawRecord{
		ID:            req.TransactionID,
		Date:          req.Date,
		Amount:        req.Amount,
		Merchant:      req.Merchant,
		Category:      req.Category,
		City:          req.City,
		Region:        req.Region,
		PaymentMethod: req.PaymentMethod,
	}

	result, err := h.orch.IngestSingle(r.Context(), rec, req.UUID)
	if err != nil {
		h.log.Error().Err(err).Msg("Single-transaction ingestion failed")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !result.Analyzed {
		middleware.WriteJSON(w, http.StatusOK, savedResponse{
			Status:  "success",
			Message: ingest.NotEnoughDataMessage,
			UUID:    result.BatchID,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analyzedResponse{
		Status:            "success",
		UUID:              result.BatchID,
		AggregateSnapshot: result.Analyses[0].AggregateSnapshot,
	})
}

// UploadTransactions handles POST /upload_transactions/ (multipart CSV
// under the "file" field).
func (h *TransactionsHandler) UploadTransactions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "CSV file is required under the \"file\" field")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	records, err := pipeline.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		var schemaErr *pipeline.SchemaError
		if errors.As(err, &schemaErr) {
			middleware.WriteError(w, http.StatusBadRequest, schemaErr.Error())
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orch.IngestBatch(r.Context(), records)
	if err != nil {
		h.log.Error().Err(err).Msg("Batch ingestion failed")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.enqueueArchival(r, result.BatchID, raw)

	if !result.Analyzed {
		middleware.WriteJSON(w, http.StatusOK, savedResponse{
			Status:  "success",
			Message: ingest.NotEnoughDataMessage,
			UUID:    result.BatchID,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"uuid":        result.BatchID,
		"comparisons": result.Analyses,
	})
}

// enqueueArchival queues the raw CSV for background archival to GCS.
// Archival failures never fail the upload.
func (h *TransactionsHandler) enqueueArchival(r *http.Request, batchID string, raw []byte) {
	if h.archive == nil {
		return
	}
	objectName := fmt.Sprintf("batches/%s/%s.csv", time.Now().Format("2006/01/02"), batchID)
	job := &jobs.ArchiveBatchJob{
		BatchID:    batchID,
		ObjectName: objectName,
		CSV:        raw,
	}
	if err := h.archive.PublishArchiveBatch(r.Context(), job); err != nil {
		h.log.Warn().Err(err).Str("batch_id", batchID).Msg("Failed to enqueue batch archival")
	}
}

// CompareLastThreeAnalyses handles GET /compare_last_three_analyses/.
func (h *TransactionsHandler) CompareLastThreeAnalyses(w http.ResponseWriter, r *http.Request) {
	records, err := h.snapLog.LastSnapshots(r.Context(), 3)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load snapshots")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(records) < 3 {
		middleware.WriteError(w, http.StatusNotFound, "Not enough past analyses found for comparison")
		return
	}

	// The log returns most-recent-first; the comparator wants
	// chronological order.
	chronological := make([]*domain.SnapshotRecord, len(records))
	for i, rec := range records {
		chronological[len(records)-1-i] = rec
	}

	results, err := analytics.CompareSnapshots(chronological)
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) {
			middleware.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "success",
		"comparison_results": results,
	})
}

// Health handles GET /.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
