package storage

import (
	"context"

	"chainguard/internal/domain"
)

// ScanHistoryStore provides access to scan_history storage.
type ScanHistoryStore interface {
	// Insert appends a history entry and fills in its assigned ID.
	Insert(ctx context.Context, e *domain.ScanHistoryEntry) error

	// GetRecent retrieves the newest entries, ordered by created_at DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.ScanHistoryEntry, error)

	// GetByAddress retrieves entries for one address, ordered by created_at DESC.
	GetByAddress(ctx context.Context, address string, limit int) ([]*domain.ScanHistoryEntry, error)

	// DeleteOlderThan removes entries created before cutoffMs. Returns the
	// number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoffMs int64) (int64, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)
}

// AddressbookStore provides access to addressbook storage.
type AddressbookStore interface {
	// Upsert creates or replaces the tag for an address.
	Upsert(ctx context.Context, e *domain.AddressbookEntry) error

	// Get retrieves the entry for an address. Returns ErrNotFound if absent.
	Get(ctx context.Context, address string) (*domain.AddressbookEntry, error)

	// List retrieves all entries, ordered by date_added DESC.
	List(ctx context.Context) ([]*domain.AddressbookEntry, error)

	// Delete removes the entry for an address. Returns ErrNotFound if absent.
	Delete(ctx context.Context, address string) error
}

// ScanEventStore provides access to the high-volume scan_events log.
type ScanEventStore interface {
	// Insert appends one event.
	Insert(ctx context.Context, e *domain.ScanEvent) error

	// InsertBulk appends multiple events in one round trip.
	InsertBulk(ctx context.Context, events []*domain.ScanEvent) error

	// CountByStatus returns event counts per status within [start, end] ms.
	CountByStatus(ctx context.Context, start, end int64) (map[string]int64, error)

	// GetRecent retrieves the newest events, ordered by timestamp DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.ScanEvent, error)
}
