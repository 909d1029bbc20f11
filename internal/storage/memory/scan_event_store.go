package memory

import (
	"context"
	"sort"
	"sync"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// ScanEventStore is an in-memory implementation of storage.ScanEventStore.
type ScanEventStore struct {
	mu   sync.RWMutex
	data []*domain.ScanEvent
}

// NewScanEventStore creates a new in-memory scan event store.
func NewScanEventStore() *ScanEventStore {
	return &ScanEventStore{}
}

// Insert appends one event.
func (s *ScanEventStore) Insert(_ context.Context, e *domain.ScanEvent) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data = append(s.data, &eventCopy)
	return nil
}

// InsertBulk appends multiple events.
func (s *ScanEventStore) InsertBulk(ctx context.Context, events []*domain.ScanEvent) error {
	for _, e := range events {
		if err := s.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// CountByStatus returns event counts per status within [start, end] ms.
func (s *ScanEventStore) CountByStatus(_ context.Context, start, end int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.data {
		if e.Timestamp >= start && e.Timestamp <= end {
			counts[string(e.Status)]++
		}
	}
	return counts, nil
}

// GetRecent retrieves the newest events, ordered by timestamp DESC.
func (s *ScanEventStore) GetRecent(_ context.Context, limit int) ([]*domain.ScanEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ScanEvent, 0, len(s.data))
	for _, e := range s.data {
		eventCopy := *e
		result = append(result, &eventCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ScanEventStore = (*ScanEventStore)(nil)
