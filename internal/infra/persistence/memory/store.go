// Package memory provides the in-memory run store used directly for
// ephemeral deployments and embedded by the durable backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"standcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RunStore = (*Store)(nil)

// Store keeps run records in process memory, keyed by run ID.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewStore constructs an empty in-memory run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// SaveRun stores or replaces a run record.
func (s *Store) SaveRun(_ context.Context, record domain.RunRecord) error {
	if record.ID == "" {
		return fmt.Errorf("run record requires an id")
	}
	s.mu.Lock()
	s.runs[record.ID] = record
	s.mu.Unlock()
	return nil
}

// GetRun returns the run record with the given ID.
func (s *Store) GetRun(_ context.Context, id string) (domain.RunRecord, bool, error) {
	s.mu.RLock()
	record, ok := s.runs[id]
	s.mu.RUnlock()
	return record, ok, nil
}

// ListRuns returns all run records ordered by creation time, then ID.
func (s *Store) ListRuns(_ context.Context) ([]domain.RunRecord, error) {
	s.mu.RLock()
	out := make([]domain.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		out = append(out, record)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close releases nothing; it exists to satisfy the store contract.
func (s *Store) Close() error { return nil }

// ImportState replaces the store contents with the supplied records.
func (s *Store) ImportState(records []domain.RunRecord) {
	s.mu.Lock()
	s.runs = make(map[string]domain.RunRecord, len(records))
	for _, record := range records {
		s.runs[record.ID] = record
	}
	s.mu.Unlock()
}
