// Package store defines the persistence interfaces consumed by the
// ingestion orchestrator, the analytics handlers and the narrative
// generator. Implementations live in the bigquery and memory
// subpackages; callers receive an implementation explicitly instead of
// reaching for a package-level connection.
package store

import (
	"context"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// TransactionStore persists cleaned transactions and serves the full
// historical set back to the aggregation engine.
type TransactionStore interface {
	// InsertTransactions appends a batch of cleaned rows. Rows are
	// tagged with their batch ID by the caller; no per-batch atomicity
	// is guaranteed.
	InsertTransactions(ctx context.Context, rows []*domain.Transaction) error

	// AllTransactions returns every persisted row. The orchestrator
	// reads this once per ingestion event so that all aggregate
	// computations for the event share one consistent snapshot.
	AllTransactions(ctx context.Context) ([]*domain.Transaction, error)

	// CountTransactions returns the total number of persisted rows.
	CountTransactions(ctx context.Context) (int, error)
}

// SnapshotLog is the append-only log of aggregate snapshots. Appends
// assign a monotonically increasing identifier; the log is never
// mutated afterwards.
type SnapshotLog interface {
	// AppendSnapshot persists one snapshot and returns its assigned
	// identifier as a string.
	AppendSnapshot(ctx context.Context, transactionID string, snap domain.AggregateSnapshot) (string, error)

	// LastSnapshots returns up to n records ordered by insertion
	// descending (most recent first).
	LastSnapshots(ctx context.Context, n int) ([]*domain.SnapshotRecord, error)
}

// NarrativeStore persists the complete generated narratives, keyed by
// the first transaction of the analyzed set and the prompting strategy
// that produced each text.
type NarrativeStore interface {
	SaveNarratives(ctx context.Context, transactionID string, narratives map[string]string) error
}

// Store bundles the three persistence capabilities so that callers
// needing all of them can take a single dependency.
type Store interface {
	TransactionStore
	SnapshotLog
	NarrativeStore
}
