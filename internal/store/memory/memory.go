// Package memory provides an in-memory implementation of the store
// interfaces. It is safe for concurrent use and is suitable for tests
// and single-instance local deployments; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
)

// Store keeps transactions, the snapshot log and narratives in memory.
type Store struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction
	snapshots    []*domain.SnapshotRecord
	nextID       int64
	narratives   map[string]map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:     1,
		narratives: make(map[string]map[string]string),
	}
}

// InsertTransactions implements store.TransactionStore.
func (s *Store) InsertTransactions(ctx context.Context, rows []*domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		// Copy to guard against mutation by the caller.
		rowCopy := *row
		s.transactions = append(s.transactions, &rowCopy)
	}
	return nil
}

// AllTransactions implements store.TransactionStore.
func (s *Store) AllTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Transaction, len(s.transactions))
	for i, row := range s.transactions {
		rowCopy := *row
		out[i] = &rowCopy
	}
	return out, nil
}

// CountTransactions implements store.TransactionStore.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions), nil
}

// AppendSnapshot implements store.SnapshotLog.
func (s *Store) AppendSnapshot(ctx context.Context, transactionID string, snap domain.AggregateSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &domain.SnapshotRecord{
		ID:                strconv.FormatInt(s.nextID, 10),
		TransactionID:     transactionID,
		AggregateSnapshot: snap,
	}
	s.nextID++
	s.snapshots = append(s.snapshots, rec)
	return rec.ID, nil
}

// LastSnapshots implements store.SnapshotLog. Records are returned most
// recent first.
func (s *Store) LastSnapshots(ctx context.Context, n int) ([]*domain.SnapshotRecord, error) {
	if n < 0 {
		return nil, fmt.Errorf("LastSnapshots: n must be non-negative, got %d", n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.snapshots) {
		n = len(s.snapshots)
	}
	out := make([]*domain.SnapshotRecord, 0, n)
	for i := len(s.snapshots) - 1; i >= len(s.snapshots)-n; i-- {
		recCopy := *s.snapshots[i]
		out = append(out, &recCopy)
	}
	return out, nil
}

// SaveNarratives implements store.NarrativeStore.
func (s *Store) SaveNarratives(ctx context.Context, transactionID string, narratives map[string]string) error {
	if transactionID == "" {
		return fmt.Errorf("SaveNarratives: transaction ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]string, len(narratives))
	for k, v := range narratives {
		saved[k] = v
	}
	s.narratives[transactionID] = saved
	return nil
}

// Narratives returns the saved narratives for a transaction, or nil if
// none were saved. Used by tests.
func (s *Store) Narratives(transactionID string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.narratives[transactionID]
}

var _ store.Store = (*Store)(nil)
