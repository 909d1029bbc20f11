package memory

import (
	"context"
	"testing"

	"chainguard/internal/domain"
	"chainguard/internal/storage"
)

func historyEntry(address string, createdAt int64) *domain.ScanHistoryEntry {
	return &domain.ScanHistoryEntry{
		Address: address,
		Record: domain.RiskRecord{
			Status:     domain.StatusBlue,
			RiskLevel:  domain.RiskInfo,
			Summary:    "Wallet address detected",
			Flags:      []string{"wallet"},
			Confidence: 0.8,
		},
		CreatedAt: createdAt,
	}
}

func TestScanHistoryStore_InsertAssignsID(t *testing.T) {
	store := NewScanHistoryStore()
	ctx := context.Background()

	e := historyEntry("0xd8da6bf26964af9d7eed9e03e53415d37aa96045", 1704067200000)
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("expected assigned ID 1, got %d", e.ID)
	}

	e2 := historyEntry("0xd8da6bf26964af9d7eed9e03e53415d37aa96045", 1704067201000)
	store.Insert(ctx, e2)
	if e2.ID != 2 {
		t.Errorf("expected assigned ID 2, got %d", e2.ID)
	}
}

func TestScanHistoryStore_GetRecentOrder(t *testing.T) {
	store := NewScanHistoryStore()
	ctx := context.Background()

	store.Insert(ctx, historyEntry("0x1111111111111111111111111111111111111111", 1000))
	store.Insert(ctx, historyEntry("0x2222222222222222222222222222222222222222", 3000))
	store.Insert(ctx, historyEntry("0x3333333333333333333333333333333333333333", 2000))

	got, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].CreatedAt != 3000 || got[1].CreatedAt != 2000 {
		t.Errorf("expected newest first, got %d then %d", got[0].CreatedAt, got[1].CreatedAt)
	}
}

func TestScanHistoryStore_GetByAddress(t *testing.T) {
	store := NewScanHistoryStore()
	ctx := context.Background()

	target := "0x1111111111111111111111111111111111111111"
	store.Insert(ctx, historyEntry(target, 1000))
	store.Insert(ctx, historyEntry("0x2222222222222222222222222222222222222222", 2000))
	store.Insert(ctx, historyEntry(target, 3000))

	got, err := store.GetByAddress(ctx, target, 0)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.Address != target {
			t.Errorf("unexpected address %s", e.Address)
		}
	}
}

func TestScanHistoryStore_DeleteOlderThan(t *testing.T) {
	store := NewScanHistoryStore()
	ctx := context.Background()

	store.Insert(ctx, historyEntry("0x1111111111111111111111111111111111111111", 1000))
	store.Insert(ctx, historyEntry("0x2222222222222222222222222222222222222222", 2000))
	store.Insert(ctx, historyEntry("0x3333333333333333333333333333333333333333", 3000))

	removed, err := store.DeleteOlderThan(ctx, 2500)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 remaining, got %d", count)
	}
}

func TestScanHistoryStore_InvalidInput(t *testing.T) {
	store := NewScanHistoryStore()
	if err := store.Insert(context.Background(), &domain.ScanHistoryEntry{}); err != storage.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
