package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chainguard/internal/domain"
)

const testAddr = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

type countingClassifier struct {
	calls atomic.Int32
	block chan struct{} // when non-nil, Classify waits on it
}

func (c *countingClassifier) Classify(ctx context.Context, address string) *domain.RiskRecord {
	c.calls.Add(1)
	if c.block != nil {
		<-c.block
	}
	return &domain.RiskRecord{
		Status:     domain.StatusBlue,
		RiskLevel:  domain.RiskInfo,
		Summary:    "Wallet address detected",
		Flags:      []string{"wallet"},
		Confidence: 0.8,
	}
}

// ctxAwareClassifier degrades its verdict when the context is already
// canceled, the way a real pipeline does when collaborator calls fail.
type ctxAwareClassifier struct {
	sawCanceled atomic.Bool
}

func (c *ctxAwareClassifier) Classify(ctx context.Context, address string) *domain.RiskRecord {
	if ctx.Err() != nil {
		c.sawCanceled.Store(true)
		return &domain.RiskRecord{Status: domain.StatusYellow, RiskLevel: domain.RiskUnknown}
	}
	return &domain.RiskRecord{Status: domain.StatusGreen, RiskLevel: domain.RiskSafe}
}

func TestClassify_CanceledCallerDoesNotPoisonCache(t *testing.T) {
	cls := &ctxAwareClassifier{}
	svc := New(Options{Classifier: cls})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := svc.Classify(ctx, testAddr)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.sawCanceled.Load() {
		t.Error("flight must run detached from the caller's context")
	}
	if rec.Status != domain.StatusGreen {
		t.Errorf("status = %q, want green", rec.Status)
	}

	// The cached verdict served to later callers must be the healthy one.
	rec, err = svc.Classify(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if rec.Status != domain.StatusGreen {
		t.Errorf("cached status = %q, want green", rec.Status)
	}
}

func TestClassify_CacheHit(t *testing.T) {
	cls := &countingClassifier{}
	svc := New(Options{Classifier: cls})
	ctx := context.Background()

	first, hit, err := svc.ClassifyDetailed(ctx, testAddr)
	if err != nil {
		t.Fatalf("ClassifyDetailed: %v", err)
	}
	if hit {
		t.Error("first call must not be a cache hit")
	}
	// Same address in different case must hit the same entry.
	second, hit, err := svc.ClassifyDetailed(ctx, "0xDAC17F958D2EE523A2206206994597C13D831EC7")
	if err != nil {
		t.Fatalf("ClassifyDetailed: %v", err)
	}
	if !hit {
		t.Error("second call must be a cache hit")
	}

	if cls.calls.Load() != 1 {
		t.Errorf("expected 1 pipeline run, got %d", cls.calls.Load())
	}
	if first != second {
		t.Error("cached call must return the identical record")
	}

	stats := svc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestClassify_TTLExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	cls := &countingClassifier{}
	svc := New(Options{Classifier: cls, TTL: time.Hour, Now: clock})
	ctx := context.Background()

	svc.Classify(ctx, testAddr)
	now = now.Add(59 * time.Minute)
	svc.Classify(ctx, testAddr)
	if cls.calls.Load() != 1 {
		t.Errorf("entry should still be live at 59m, got %d runs", cls.calls.Load())
	}

	now = now.Add(2 * time.Minute)
	svc.Classify(ctx, testAddr)
	if cls.calls.Load() != 2 {
		t.Errorf("entry should expire after TTL, got %d runs", cls.calls.Load())
	}
}

func TestClassify_ConcurrentDeduplication(t *testing.T) {
	cls := &countingClassifier{block: make(chan struct{})}
	svc := New(Options{Classifier: cls})

	const n = 20
	var wg sync.WaitGroup
	results := make([]*domain.RiskRecord, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := svc.Classify(context.Background(), testAddr)
			if err != nil {
				t.Errorf("Classify: %v", err)
			}
			results[i] = rec
		}(i)
	}

	// Let all goroutines pile up on the in-flight classification.
	time.Sleep(50 * time.Millisecond)
	close(cls.block)
	wg.Wait()

	if cls.calls.Load() != 1 {
		t.Errorf("expected exactly 1 pipeline run for %d concurrent calls, got %d", n, cls.calls.Load())
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("all concurrent callers must receive the same record")
		}
	}
}

func TestClassify_MaxSizeEviction(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	cls := &countingClassifier{}
	svc := New(Options{Classifier: cls, MaxSize: 3, Now: clock})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		addr := fmt.Sprintf("0x%040d", i)
		if _, err := svc.Classify(ctx, addr); err != nil {
			t.Fatalf("Classify: %v", err)
		}
		now = now.Add(time.Minute)
	}

	stats := svc.Stats()
	if stats.Size != 3 {
		t.Errorf("expected size capped at 3, got %d", stats.Size)
	}
	if stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}

	// Oldest entry is gone, re-classifying it is a miss.
	svc.Classify(ctx, fmt.Sprintf("0x%040d", 0))
	if cls.calls.Load() != 5 {
		t.Errorf("expected oldest entry evicted, got %d runs", cls.calls.Load())
	}
}

func TestInvalidate(t *testing.T) {
	cls := &countingClassifier{}
	svc := New(Options{Classifier: cls})
	ctx := context.Background()

	svc.Classify(ctx, testAddr)
	svc.Invalidate(testAddr)
	svc.Classify(ctx, testAddr)

	if cls.calls.Load() != 2 {
		t.Errorf("expected re-run after invalidation, got %d", cls.calls.Load())
	}
}

func TestInvalidateAll(t *testing.T) {
	cls := &countingClassifier{}
	svc := New(Options{Classifier: cls})
	ctx := context.Background()

	svc.Classify(ctx, testAddr)
	svc.Classify(ctx, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	svc.InvalidateAll()

	if svc.Stats().Size != 0 {
		t.Errorf("expected empty cache, got %d", svc.Stats().Size)
	}
}

func TestClassify_InvalidAddress(t *testing.T) {
	svc := New(Options{Classifier: &countingClassifier{}})
	if _, err := svc.Classify(context.Background(), "not-an-address"); err == nil {
		t.Fatal("expected error for malformed address")
	}
}
