package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/jobs"
)

// Store is an in-memory implementation of jobs.JobStore. It is safe for
// concurrent use; state is lost on restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ArchiveBatchJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ArchiveBatchJob),
	}
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ArchiveBatchJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to guard against external modification.
	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ArchiveBatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

var _ jobs.JobStore = (*Store)(nil)
