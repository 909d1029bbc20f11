package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainguard/internal/domain"
)

func TestScanEventStore_InsertBulkAndGetRecent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanEventStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	require.NoError(t, store.InsertBulk(ctx, nil))

	events := []*domain.ScanEvent{
		{
			Address:    "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
			Type:       domain.TypeWallet,
			Status:     domain.StatusBlue,
			RiskLevel:  domain.RiskInfo,
			Confidence: 0.8,
			CacheHit:   false,
			DurationMs: 120,
			Timestamp:  1000,
		},
		{
			Address:    "0xdac17f958d2ee523a2206206994597c13d831ec7",
			Type:       domain.TypeContract,
			Status:     domain.StatusRed,
			RiskLevel:  domain.RiskCritical,
			Confidence: 0.9,
			CacheHit:   true,
			DurationMs: 5,
			Timestamp:  2000,
		},
	}
	require.NoError(t, store.InsertBulk(ctx, events))

	got, err := store.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusRed, got[0].Status, "newest first")
	assert.True(t, got[0].CacheHit)
	assert.Equal(t, domain.StatusBlue, got[1].Status)
	assert.False(t, got[1].CacheHit)
}

func TestScanEventStore_CountByStatus(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanEventStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.ScanEvent{
		{Address: "0x1111111111111111111111111111111111111111", Type: domain.TypeWallet, Status: domain.StatusBlue, RiskLevel: domain.RiskInfo, Timestamp: 1000},
		{Address: "0x2222222222222222222222222222222222222222", Type: domain.TypeContract, Status: domain.StatusRed, RiskLevel: domain.RiskHigh, Timestamp: 2000},
		{Address: "0x3333333333333333333333333333333333333333", Type: domain.TypeContract, Status: domain.StatusRed, RiskLevel: domain.RiskCritical, Timestamp: 3000},
		{Address: "0x4444444444444444444444444444444444444444", Type: domain.TypeContract, Status: domain.StatusRed, RiskLevel: domain.RiskCritical, Timestamp: 9000},
	}))

	counts, err := store.CountByStatus(ctx, 0, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["blue"])
	assert.Equal(t, int64(2), counts["red"])
}
