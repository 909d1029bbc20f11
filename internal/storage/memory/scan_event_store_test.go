package memory

import (
	"context"
	"testing"

	"chainguard/internal/domain"
)

func scanEvent(status domain.Status, ts int64) *domain.ScanEvent {
	return &domain.ScanEvent{
		Address:    "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
		Type:       domain.TypeWallet,
		Status:     status,
		RiskLevel:  domain.RiskInfo,
		Confidence: 0.8,
		Timestamp:  ts,
	}
}

func TestScanEventStore_CountByStatus(t *testing.T) {
	store := NewScanEventStore()
	ctx := context.Background()

	store.InsertBulk(ctx, []*domain.ScanEvent{
		scanEvent(domain.StatusBlue, 1000),
		scanEvent(domain.StatusRed, 2000),
		scanEvent(domain.StatusRed, 3000),
		scanEvent(domain.StatusRed, 9000), // outside range
	})

	counts, err := store.CountByStatus(ctx, 0, 5000)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts["blue"] != 1 || counts["red"] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestScanEventStore_GetRecent(t *testing.T) {
	store := NewScanEventStore()
	ctx := context.Background()

	store.Insert(ctx, scanEvent(domain.StatusBlue, 1000))
	store.Insert(ctx, scanEvent(domain.StatusRed, 3000))
	store.Insert(ctx, scanEvent(domain.StatusGreen, 2000))

	got, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Timestamp != 3000 || got[1].Timestamp != 2000 {
		t.Errorf("expected newest first, got %d then %d", got[0].Timestamp, got[1].Timestamp)
	}
}
