// Package memory keeps the aggregated report collection in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// Store is an ordered report collection, unique by full field equality.
type Store struct {
	mu      sync.Mutex
	reports []domain.Report
	seen    map[domain.ReportKey]struct{}
}

func New() *Store {
	return &Store{seen: make(map[domain.ReportKey]struct{})}
}

// Merge appends reports not already present, keeping the first occurrence of
// each distinct report. Duplicates inside the batch collapse as well.
func (s *Store) Merge(_ context.Context, reports []domain.Report) ([]domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]domain.Report, 0, len(reports))
	for _, report := range reports {
		key := report.Key()
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		stored := report.Clone()
		s.reports = append(s.reports, stored)
		added = append(added, stored.Clone())
	}
	return added, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = nil
	s.seen = make(map[domain.ReportKey]struct{})
	return nil
}

// All returns a deep copy of the collection in insertion order.
func (s *Store) All(context.Context) ([]domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Report, len(s.reports))
	for i, report := range s.reports {
		out[i] = report.Clone()
	}
	return out, nil
}

func (s *Store) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports), nil
}
