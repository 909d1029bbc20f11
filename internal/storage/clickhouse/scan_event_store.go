package clickhouse

import (
	"context"
	"fmt"
	"time"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

// ScanEventStore implements storage.ScanEventStore using ClickHouse.
// MergeTree does not enforce uniqueness; the log is append-only and
// duplicates are tolerated by the analytics queries.
type ScanEventStore struct {
	conn *Conn
}

// NewScanEventStore creates a new ScanEventStore.
func NewScanEventStore(conn *Conn) *ScanEventStore {
	return &ScanEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScanEventStore = (*ScanEventStore)(nil)

// Insert appends one event.
func (s *ScanEventStore) Insert(ctx context.Context, e *domain.ScanEvent) error {
	return s.InsertBulk(ctx, []*domain.ScanEvent{e})
}

// InsertBulk appends multiple events in one batch.
func (s *ScanEventStore) InsertBulk(ctx context.Context, events []*domain.ScanEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.Address == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { observeQuery("scan_events_insert_bulk", start, err) }()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO scan_events (
			address, type, status, risk_level, confidence, cache_hit, duration_ms, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare scan_events batch: %w", err)
	}

	for _, e := range events {
		cacheHit := uint8(0)
		if e.CacheHit {
			cacheHit = 1
		}
		if err := batch.Append(
			e.Address,
			string(e.Type),
			string(e.Status),
			string(e.RiskLevel),
			e.Confidence,
			cacheHit,
			e.DurationMs,
			e.Timestamp,
		); err != nil {
			return fmt.Errorf("append scan event: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send scan_events batch: %w", err)
	}
	return nil
}

// CountByStatus returns event counts per status within [start, end] ms.
func (s *ScanEventStore) CountByStatus(ctx context.Context, start, end int64) (counts map[string]int64, err error) {
	began := time.Now()
	defer func() { observeQuery("scan_events_count_by_status", began, err) }()

	query := `
		SELECT status, count() AS cnt
		FROM scan_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY status
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("count events by status: %w", err)
	}
	defer rows.Close()

	counts = make(map[string]int64)
	for rows.Next() {
		var status string
		var cnt uint64
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, fmt.Errorf("scan status count row: %w", err)
		}
		counts[status] = int64(cnt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status count rows: %w", err)
	}
	return counts, nil
}

// GetRecent retrieves the newest events, ordered by timestamp DESC.
func (s *ScanEventStore) GetRecent(ctx context.Context, limit int) (events []*domain.ScanEvent, err error) {
	if limit <= 0 {
		limit = 100
	}

	start := time.Now()
	defer func() { observeQuery("scan_events_get_recent", start, err) }()

	query := `
		SELECT address, type, status, risk_level, confidence, cache_hit, duration_ms, timestamp
		FROM scan_events
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                      domain.ScanEvent
			typ, status, riskLevel string
			cacheHit               uint8
		)
		if err := rows.Scan(&e.Address, &typ, &status, &riskLevel, &e.Confidence, &cacheHit, &e.DurationMs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Type = domain.AddressType(typ)
		e.Status = domain.Status(status)
		e.RiskLevel = domain.RiskLevel(riskLevel)
		e.CacheHit = cacheHit == 1
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}
