package memory

import (
	"context"
	"sort"
	"sync"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// AddressbookStore is an in-memory implementation of storage.AddressbookStore.
type AddressbookStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AddressbookEntry // keyed by address
}

// NewAddressbookStore creates a new in-memory addressbook store.
func NewAddressbookStore() *AddressbookStore {
	return &AddressbookStore{
		data: make(map[string]*domain.AddressbookEntry),
	}
}

// Upsert creates or replaces the tag for an address.
func (s *AddressbookStore) Upsert(_ context.Context, e *domain.AddressbookEntry) error {
	if e == nil || e.Address == "" || e.Tag == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	s.data[e.Address] = &entryCopy
	return nil
}

// Get retrieves the entry for an address. Returns ErrNotFound if absent.
func (s *AddressbookStore) Get(_ context.Context, address string) (*domain.AddressbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	entryCopy := *e
	return &entryCopy, nil
}

// List retrieves all entries, ordered by date_added DESC.
func (s *AddressbookStore) List(_ context.Context) ([]*domain.AddressbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AddressbookEntry
	for _, e := range s.data {
		entryCopy := *e
		result = append(result, &entryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DateAdded != result[j].DateAdded {
			return result[i].DateAdded > result[j].DateAdded
		}
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// Delete removes the entry for an address. Returns ErrNotFound if absent.
func (s *AddressbookStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[address]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, address)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.AddressbookStore = (*AddressbookStore)(nil)
