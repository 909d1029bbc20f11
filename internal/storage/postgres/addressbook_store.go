package postgres

import (
	"context"
	"fmt"
	"time"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// AddressbookStore implements storage.AddressbookStore using PostgreSQL.
type AddressbookStore struct {
	pool *Pool
}

// NewAddressbookStore creates a new AddressbookStore.
func NewAddressbookStore(pool *Pool) *AddressbookStore {
	return &AddressbookStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AddressbookStore = (*AddressbookStore)(nil)

// Upsert creates or replaces the tag for an address.
func (s *AddressbookStore) Upsert(ctx context.Context, e *domain.AddressbookEntry) (err error) {
	if e == nil || e.Address == "" || e.Tag == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observeQuery("addressbook_upsert", start, err) }()

	query := `
		INSERT INTO addressbook (address, tag, date_added)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET tag = EXCLUDED.tag, date_added = EXCLUDED.date_added
	`

	if _, err := s.pool.Exec(ctx, query, e.Address, e.Tag, e.DateAdded); err != nil {
		return fmt.Errorf("upsert addressbook entry: %w", err)
	}
	return nil
}

// Get retrieves the entry for an address. Returns ErrNotFound if absent.
func (s *AddressbookStore) Get(ctx context.Context, address string) (entry *domain.AddressbookEntry, err error) {
	start := time.Now()
	defer func() { observeQuery("addressbook_get", start, err) }()

	query := `
		SELECT address, tag, date_added
		FROM addressbook
		WHERE address = $1
	`

	var e domain.AddressbookEntry
	err = s.pool.QueryRow(ctx, query, address).Scan(&e.Address, &e.Tag, &e.DateAdded)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get addressbook entry: %w", err)
	}
	return &e, nil
}

// List retrieves all entries, ordered by date_added DESC.
func (s *AddressbookStore) List(ctx context.Context) (entries []*domain.AddressbookEntry, err error) {
	start := time.Now()
	defer func() { observeQuery("addressbook_list", start, err) }()

	query := `
		SELECT address, tag, date_added
		FROM addressbook
		ORDER BY date_added DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list addressbook: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.AddressbookEntry
		if err := rows.Scan(&e.Address, &e.Tag, &e.DateAdded); err != nil {
			return nil, fmt.Errorf("scan addressbook row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addressbook rows: %w", err)
	}
	return entries, nil
}

// Delete removes the entry for an address. Returns ErrNotFound if absent.
func (s *AddressbookStore) Delete(ctx context.Context, address string) (err error) {
	start := time.Now()
	defer func() { observeQuery("addressbook_delete", start, err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM addressbook WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete addressbook entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
