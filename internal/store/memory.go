package store

import (
	"context"
	"sort"
	"sync"
	"time"

	propserr "github.com/winterSteve25/props/pkg/core/error"
)

// MemoryHistoryStore is an in-memory implementation for tests and for
// sessions that run with history disabled.
type MemoryHistoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryHistoryStore creates an empty in-memory store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{runs: make([]*Run, 0)}
}

// Record stores a run
func (s *MemoryHistoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	for _, r := range s.runs {
		if r.ID == run.ID {
			return propserr.New("run already recorded").
				WithCode(propserr.CodeStoreFailed).
				WithOperation("store.Record").
				WithDetail("id", run.ID)
		}
	}
	s.runs = append(s.runs, run)
	return nil
}

// Get returns one run
func (s *MemoryHistoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, propserr.New("run not found").
		WithCode(propserr.CodeFileNotFound).
		WithOperation("store.Get").
		WithDetail("id", id)
}

// List returns runs matching filter, newest first
func (s *MemoryHistoryStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Run
	for _, r := range s.runs {
		if filter.SourceName != "" && r.SourceName != filter.SourceName {
			continue
		}
		if !filter.Since.IsZero() && r.CreatedAt.Before(filter.Since) {
			continue
		}
		if filter.OnlyFailed && r.DiagCount == 0 {
			continue
		}
		result = append(result, r)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Stats returns run statistics
func (s *MemoryHistoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var failed int64
	kindCounts := make(map[string]int64)
	for _, r := range s.runs {
		if r.DiagCount > 0 {
			failed++
		}
		for _, d := range r.Diagnostics {
			kindCounts[d.Kind]++
		}
	}
	return map[string]interface{}{
		"total_runs":          int64(len(s.runs)),
		"failed_runs":         failed,
		"diagnostics_by_kind": kindCounts,
	}, nil
}

// Prune removes runs older than the specified duration
func (s *MemoryHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := s.runs[:0]
	var removed int64
	for _, r := range s.runs {
		if r.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.runs = kept
	return removed, nil
}

// Close is a no-op
func (s *MemoryHistoryStore) Close() error {
	return nil
}
