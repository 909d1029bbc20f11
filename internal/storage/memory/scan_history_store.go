package memory

import (
	"context"
	"sort"
	"sync"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// ScanHistoryStore is an in-memory implementation of storage.ScanHistoryStore.
type ScanHistoryStore struct {
	mu     sync.RWMutex
	data   []*domain.ScanHistoryEntry
	nextID int64
}

// NewScanHistoryStore creates a new in-memory scan history store.
func NewScanHistoryStore() *ScanHistoryStore {
	return &ScanHistoryStore{nextID: 1}
}

// Insert appends a history entry and fills in its assigned ID.
func (s *ScanHistoryStore) Insert(_ context.Context, e *domain.ScanHistoryEntry) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	entryCopy.ID = s.nextID
	s.nextID++
	s.data = append(s.data, &entryCopy)
	e.ID = entryCopy.ID
	return nil
}

// GetRecent retrieves the newest entries, ordered by created_at DESC.
func (s *ScanHistoryStore) GetRecent(_ context.Context, limit int) ([]*domain.ScanHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(limit, func(*domain.ScanHistoryEntry) bool { return true }), nil
}

// GetByAddress retrieves entries for one address, ordered by created_at DESC.
func (s *ScanHistoryStore) GetByAddress(_ context.Context, address string, limit int) ([]*domain.ScanHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(limit, func(e *domain.ScanHistoryEntry) bool {
		return e.Address == address
	}), nil
}

func (s *ScanHistoryStore) collectLocked(limit int, keep func(*domain.ScanHistoryEntry) bool) []*domain.ScanHistoryEntry {
	var result []*domain.ScanHistoryEntry
	for _, e := range s.data {
		if keep(e) {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	// Sort by created_at DESC, newest ID first on ties
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// DeleteOlderThan removes entries created before cutoffMs.
func (s *ScanHistoryStore) DeleteOlderThan(_ context.Context, cutoffMs int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*domain.ScanHistoryEntry
	var removed int64
	for _, e := range s.data {
		if e.CreatedAt < cutoffMs {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.data = kept
	return removed, nil
}

// Count returns the total number of entries.
func (s *ScanHistoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

// Verify interface compliance at compile time.
var _ storage.ScanHistoryStore = (*ScanHistoryStore)(nil)
