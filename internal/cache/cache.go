// Package cache memoizes classification verdicts per address with a TTL
// and collapses concurrent requests for the same address into a single
// pipeline run.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"chainguard/internal/domain"
	"chainguard/internal/ethaddr"
	"chainguard/internal/observability"
)

// Defaults matching the extension's cache policy.
const (
	DefaultTTL     = time.Hour
	DefaultMaxSize = 1000
)

// Classifier produces a verdict for one normalized address.
type Classifier interface {
	Classify(ctx context.Context, address string) *domain.RiskRecord
}

type entry struct {
	record     *domain.RiskRecord
	computedAt time.Time
}

// Service is the memoized, de-duplicated front of the classifier.
type Service struct {
	classifier Classifier
	ttl        time.Duration
	maxSize    int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]entry

	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	coalesced atomic.Int64
	evictions atomic.Int64
}

// Options for creating Service.
type Options struct {
	Classifier Classifier
	TTL        time.Duration
	MaxSize    int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New creates a new Service.
func New(opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		classifier: opts.Classifier,
		ttl:        ttl,
		maxSize:    maxSize,
		now:        now,
		entries:    make(map[string]entry),
	}
}

// Classify returns the verdict for an address, from cache when live.
// Concurrent calls for the same uncached address share one pipeline
// run. The only error is a malformed address rejected at the boundary.
func (s *Service) Classify(ctx context.Context, address string) (*domain.RiskRecord, error) {
	rec, _, err := s.ClassifyDetailed(ctx, address)
	return rec, err
}

// ClassifyDetailed is Classify plus a flag reporting whether the
// verdict was served from cache.
func (s *Service) ClassifyDetailed(ctx context.Context, address string) (*domain.RiskRecord, bool, error) {
	addr, err := ethaddr.Normalize(address)
	if err != nil {
		return nil, false, err
	}

	if rec := s.lookup(addr); rec != nil {
		s.hits.Add(1)
		observability.RecordCacheHit()
		return rec, true, nil
	}
	s.misses.Add(1)
	observability.RecordCacheMiss()

	// The flight runs detached from the triggering request: its result
	// is shared with coalesced callers and cached for the full TTL, so
	// one canceled caller must not degrade the verdict for everyone.
	flightCtx := context.WithoutCancel(ctx)
	v, _, shared := s.group.Do(addr, func() (interface{}, error) {
		start := s.now()
		rec := s.classifier.Classify(flightCtx, addr)
		observability.RecordScan(string(rec.Status), rec.IsGated, s.now().Sub(start).Seconds())
		if rec.HasFlag("sanctions") {
			observability.RecordSanctionsHit()
		}
		if rec.HasFlag("manual_review_needed") {
			observability.RecordSafetyNet()
		}
		s.store(addr, rec)
		return rec, nil
	})
	if shared {
		s.coalesced.Add(1)
		observability.RecordCacheCoalesced()
	}
	return v.(*domain.RiskRecord), false, nil
}

// lookup returns a live cached record, expiring lazily on read.
func (s *Service) lookup(addr string) *domain.RiskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[addr]
	if !ok {
		return nil
	}
	if s.now().Sub(e.computedAt) >= s.ttl {
		delete(s.entries, addr)
		observability.UpdateCacheSize(len(s.entries))
		return nil
	}
	return e.record
}

func (s *Service) store(addr string, rec *domain.RiskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[addr]; !exists && len(s.entries) >= s.maxSize {
		s.evictOldestLocked()
	}
	s.entries[addr] = entry{record: rec, computedAt: s.now()}
	observability.UpdateCacheSize(len(s.entries))
}

// evictOldestLocked drops the entry with the oldest timestamp. Linear
// scan; the map is capped at maxSize.
func (s *Service) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range s.entries {
		if oldestKey == "" || e.computedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.computedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
		s.evictions.Add(1)
		observability.RecordCacheEviction()
	}
}

// Invalidate drops the cached verdict for one address.
func (s *Service) Invalidate(address string) {
	addr, err := ethaddr.Normalize(address)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, addr)
	observability.UpdateCacheSize(len(s.entries))
}

// InvalidateAll clears the cache entirely.
func (s *Service) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	observability.UpdateCacheSize(0)
}

// Stats summarizes cache behavior since startup.
type Stats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"maxSize"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Coalesced int64 `json:"coalesced"`
	Evictions int64 `json:"evictions"`
}

// Stats returns current counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	size := len(s.entries)
	s.mu.Unlock()
	return Stats{
		Size:      size,
		MaxSize:   s.maxSize,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Coalesced: s.coalesced.Load(),
		Evictions: s.evictions.Load(),
	}
}
