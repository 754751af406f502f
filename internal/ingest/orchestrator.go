// Package ingest wires the cleaning pipeline, the transaction store
// and the aggregation engine into the single-transaction and batch
// upload flows.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/analytics"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/pipeline"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
)

// MinTransactionsForAnalysis is the total number of persisted rows the
// store must hold before any aggregate computation runs. Below it,
// ingestion saves the data and short-circuits; that is a success state,
// not an error.
const MinTransactionsForAnalysis = 30

// NotEnoughDataMessage is returned to clients on the short-circuit path.
const NotEnoughDataMessage = "Not enough data to give analysis, but the data is saved to the database."

// RowAnalysis pairs one ingested transaction with the snapshot computed
// for its (year, month, week) target.
type RowAnalysis struct {
	TransactionID string `json:"transaction_id"`
	domain.AggregateSnapshot
}

// Result is the outcome of one ingestion event. When Analyzed is false
// the data was saved but the store held fewer than
// MinTransactionsForAnalysis rows, and Analyses is empty.
type Result struct {
	BatchID  string
	Analyzed bool
	Analyses []RowAnalysis
}

// Orchestrator runs ingestion events against injected storage. It holds
// no mutable state between events; the full historical set is re-read
// from the store on every event.
type Orchestrator struct {
	txStore store.TransactionStore
	snapLog store.SnapshotLog
	log     zerolog.Logger
}

// NewOrchestrator creates an orchestrator bound to the given stores.
func NewOrchestrator(txStore store.TransactionStore, snapLog store.SnapshotLog, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		txStore: txStore,
		snapLog: snapLog,
		log:     log,
	}
}

// IngestSingle cleans and ingests one transaction. batchID may be empty,
// in which case a fresh one is assigned. The record passes through the
// same cleaning stages as a batch; if cleaning drops it (bad date or
// geography) the event fails.
func (o *Orchestrator) IngestSingle(ctx context.Context, rec pipeline.RawRecord, batchID string) (*Result, error) {
	txs := pipeline.Clean([]pipeline.RawRecord{rec})
	if len(txs) == 0 {
		return nil, fmt.Errorf("transaction was rejected by cleaning (invalid date or city/region)")
	}
	if batchID == "" {
		batchID = uuid.NewString()
	}
	return o.ingest(ctx, txs, batchID)
}

// IngestBatch cleans and ingests an uploaded batch under a fresh batch
// ID. An empty post-cleaning batch is still persisted as a no-op and
// reported with no analyses.
func (o *Orchestrator) IngestBatch(ctx context.Context, records []pipeline.RawRecord) (*Result, error) {
	txs := pipeline.Clean(records)
	return o.ingest(ctx, txs, uuid.NewString())
}

func (o *Orchestrator) ingest(ctx context.Context, txs []*domain.Transaction, batchID string) (*Result, error) {
	// 1. Tag and persist the cleaned rows.
	for _, t := range txs {
		t.BatchID = batchID
	}
	if err := o.txStore.InsertTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("ingest: persisting transactions: %w", err)
	}

	// 2. Short-circuit while the store is below the analysis threshold.
	total, err := o.txStore.CountTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: counting transactions: %w", err)
	}
	if total < MinTransactionsForAnalysis {
		o.log.Info().
			Str("batch_id", batchID).
			Int("total_transactions", total).
			Msg("Data saved, below analysis threshold")
		return &Result{BatchID: batchID, Analyzed: false}, nil
	}

	// 3. Read the full historical set once. Every row of this event is
	// analyzed against this same snapshot; rows do not observe
	// incremental state from the loop below.
	history, err := o.txStore.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading historical set: %w", err)
	}

	// 4. Compute and persist one snapshot per ingested row, in order.
	result := &Result{BatchID: batchID, Analyzed: true}
	for _, t := range txs {
		snap := analytics.Analyze(history, t.Year, t.Month, t.WeekOfMonth)
		snapshotID, err := o.snapLog.AppendSnapshot(ctx, t.ID, snap)
		if err != nil {
			return nil, fmt.Errorf("ingest: appending snapshot for %s: %w", t.ID, err)
		}
		o.log.Debug().
			Str("transaction_id", t.ID).
			Str("snapshot_id", snapshotID).
			Msg("Snapshot persisted")
		result.Analyses = append(result.Analyses, RowAnalysis{
			TransactionID:     t.ID,
			AggregateSnapshot: snap,
		})
	}

	o.log.Info().
		Str("batch_id", batchID).
		Int("rows", len(txs)).
		Int("analyses", len(result.Analyses)).
		Msg("Ingestion event completed")
	return result, nil
}
