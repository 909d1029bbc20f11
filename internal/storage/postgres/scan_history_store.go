package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// ScanHistoryStore implements storage.ScanHistoryStore using PostgreSQL.
// The full verdict is stored as JSONB so the record survives schema
// evolution of RiskRecord without table migrations.
type ScanHistoryStore struct {
	pool *Pool
}

// NewScanHistoryStore creates a new ScanHistoryStore.
func NewScanHistoryStore(pool *Pool) *ScanHistoryStore {
	return &ScanHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScanHistoryStore = (*ScanHistoryStore)(nil)

// Insert appends a history entry and fills in its assigned ID.
func (s *ScanHistoryStore) Insert(ctx context.Context, e *domain.ScanHistoryEntry) (err error) {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}

	record, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("marshal risk record: %w", err)
	}

	start := time.Now()
	defer func() { observeQuery("scan_history_insert", start, err) }()

	query := `
		INSERT INTO scan_history (address, record, page_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	row := s.pool.QueryRow(ctx, query, e.Address, record, e.PageURL, e.CreatedAt)
	if err := row.Scan(&e.ID); err != nil {
		return fmt.Errorf("insert scan history: %w", err)
	}
	return nil
}

// GetRecent retrieves the newest entries, ordered by created_at DESC.
func (s *ScanHistoryStore) GetRecent(ctx context.Context, limit int) (entries []*domain.ScanHistoryEntry, err error) {
	start := time.Now()
	defer func() { observeQuery("scan_history_get_recent", start, err) }()

	query := `
		SELECT id, address, record, page_url, created_at
		FROM scan_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("get recent history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// GetByAddress retrieves entries for one address, ordered by created_at DESC.
func (s *ScanHistoryStore) GetByAddress(ctx context.Context, address string, limit int) (entries []*domain.ScanHistoryEntry, err error) {
	start := time.Now()
	defer func() { observeQuery("scan_history_get_by_address", start, err) }()

	query := `
		SELECT id, address, record, page_url, created_at
		FROM scan_history
		WHERE address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, address, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("get history by address: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// DeleteOlderThan removes entries created before cutoffMs.
func (s *ScanHistoryStore) DeleteOlderThan(ctx context.Context, cutoffMs int64) (removed int64, err error) {
	start := time.Now()
	defer func() { observeQuery("scan_history_delete_older_than", start, err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM scan_history WHERE created_at < $1`, cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("delete old history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the total number of entries.
func (s *ScanHistoryStore) Count(ctx context.Context) (count int64, err error) {
	start := time.Now()
	defer func() { observeQuery("scan_history_count", start, err) }()

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM scan_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// scanHistoryRows scans multiple rows into history entries.
func scanHistoryRows(rows pgx.Rows) ([]*domain.ScanHistoryEntry, error) {
	var entries []*domain.ScanHistoryEntry

	for rows.Next() {
		var e domain.ScanHistoryEntry
		var record []byte

		if err := rows.Scan(&e.ID, &e.Address, &record, &e.PageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal(record, &e.Record); err != nil {
			return nil, fmt.Errorf("unmarshal risk record: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
