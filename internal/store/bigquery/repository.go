// Package bigquery implements the store interfaces on top of BigQuery.
// Appends use the streaming inserter; reads use parameterized queries.
package bigquery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
)

const (
	transactionsTable = "transactions"
	snapshotsTable    = "analysis_snapshots"
	narrativesTable   = "narratives"
)

// Repository is the BigQuery-backed implementation of store.Store. It
// holds a shared client so that each operation does not open a new
// connection; project and dataset are injected rather than hardcoded.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a Repository with its own BigQuery client.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// NewRepositoryWithClient creates a Repository that reuses an existing
// client. The caller retains ownership of the client.
func NewRepositoryWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

// Close closes the underlying BigQuery client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransactions implements store.TransactionStore.
func (r *Repository) InsertTransactions(ctx context.Context, rows []*domain.Transaction) error {
	if len(rows) == 0 {
		return nil
	}

	now := time.Now()
	bqRows := make([]*TransactionRow, 0, len(rows))
	for _, row := range rows {
		bqRows = append(bqRows, transactionToRow(row, now))
	}

	inserter := r.client.Dataset(r.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, bqRows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// AllTransactions implements store.TransactionStore.
func (r *Repository) AllTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			batch_id,
			date,
			amount,
			merchant,
			category,
			city,
			region,
			payment_method,
			day_of_week,
			week_of_month,
			month,
			year,
			created_ts
		FROM %s.%s
		ORDER BY created_ts, transaction_id
	`, r.dataset, transactionsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("AllTransactions: query read: %w", err)
	}

	var out []*domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("AllTransactions: iter next: %w", err)
		}
		out = append(out, rowToTransaction(&row))
	}
	return out, nil
}

// CountTransactions implements store.TransactionStore.
func (r *Repository) CountTransactions(ctx context.Context) (int, error) {
	q := r.client.Query(fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s.%s`, r.dataset, transactionsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountTransactions: query read: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil {
		return 0, fmt.Errorf("CountTransactions: iter next: %w", err)
	}
	return int(row.N), nil
}

// AppendSnapshot implements store.SnapshotLog. The snapshot identifier
// is assigned server-side from the wall clock in nanoseconds, which is
// strictly increasing across appends from a single instance.
func (r *Repository) AppendSnapshot(ctx context.Context, transactionID string, snap domain.AggregateSnapshot) (string, error) {
	now := time.Now()
	row := snapshotToRow(now.UnixNano(), transactionID, snap, now)

	inserter := r.client.Dataset(r.dataset).Table(snapshotsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return "", fmt.Errorf("AppendSnapshot: inserting row: %w", err)
	}
	return formatSnapshotID(row.SnapshotID), nil
}

// LastSnapshots implements store.SnapshotLog.
func (r *Repository) LastSnapshots(ctx context.Context, n int) ([]*domain.SnapshotRecord, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			snapshot_id,
			transaction_id,
			historical_average_spending,
			current_week_spending,
			spending_comparison,
			historical_average_earnings,
			current_week_earnings,
			earnings_comparison,
			current_month_spending,
			current_month_earnings,
			historical_month_spending,
			historical_month_earnings,
			overall_spending,
			overall_earnings,
			created_ts
		FROM %s.%s
		ORDER BY snapshot_id DESC
		LIMIT @limit
	`, r.dataset, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(n)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LastSnapshots: query read: %w", err)
	}

	var out []*domain.SnapshotRecord
	for {
		var row SnapshotRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LastSnapshots: iter next: %w", err)
		}
		out = append(out, rowToSnapshot(&row))
	}
	return out, nil
}

// SaveNarratives implements store.NarrativeStore.
func (r *Repository) SaveNarratives(ctx context.Context, transactionID string, narratives map[string]string) error {
	if transactionID == "" {
		return fmt.Errorf("SaveNarratives: transaction ID is required")
	}

	now := time.Now()
	rows := make([]*NarrativeRow, 0, len(narratives))
	for strategy, text := range narratives {
		rows = append(rows, &NarrativeRow{
			TransactionID: transactionID,
			Strategy:      strategy,
			Narrative:     text,
			CreatedTS:     now,
		})
	}

	inserter := r.client.Dataset(r.dataset).Table(narrativesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("SaveNarratives: inserting rows: %w", err)
	}
	return nil
}

func formatSnapshotID(id int64) string {
	return strconv.FormatInt(id, 10)
}

var _ store.Store = (*Repository)(nil)
