package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := NewLogPublisher(zap.New(core))
	ctx := context.Background()

	require.NoError(t, publisher.PublishStockChanged(ctx, StockChangedEvent{
		ItemID:    "ITEM-001",
		LotID:     1,
		EntryID:   2,
		OldCount:  5,
		NewCount:  10,
		Operation: OperationCreate,
	}))
	require.NoError(t, publisher.PublishLowStock(ctx, LowStockEvent{
		ItemID:         "ITEM-001",
		LotID:          1,
		ExpirationDate: NewDate(2026, time.January, 1),
		Count:          2,
		Threshold:      10,
	}))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "events", entries[0].LoggerName)
	assert.Equal(t, "在庫変更イベント", entries[0].Message)
	assert.Equal(t, int64(10), entries[0].ContextMap()["new_count"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "2026-01-01", entries[1].ContextMap()["expiration_date"])
}

// TestManager_AuditLog は監査ログの出力を確認
func TestManager_AuditLog(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		core, logs := observer.New(zapcore.InfoLevel)
		storage := new(MockStorage)
		tx := new(MockTx)
		manager := NewManager(storage, nil, zap.New(core), &Config{AuditEnabled: enabled})
		ctx := WithUser(context.Background(), "pharmacist-01")

		storage.On("Begin", mock.Anything).Return(tx, nil)
		tx.On("LockLot", ctx, int64(1)).Return(testLot(5), nil)
		tx.On("UpdateLot", ctx, mock.AnythingOfType("*inventory.StockLot")).Return(nil)
		tx.On("CreateEntry", ctx, mock.AnythingOfType("*inventory.LedgerEntry")).Return(nil)
		tx.On("Commit").Return(nil)

		_, err := manager.Add(ctx, 1, 2, "PO-9")
		require.NoError(t, err)

		audit := logs.FilterMessage("台帳監査").All()
		if !enabled {
			assert.Empty(t, audit)
			continue
		}
		require.Len(t, audit, 1)
		fields := audit[0].ContextMap()
		assert.Equal(t, "pharmacist-01", fields["user_id"])
		assert.Equal(t, int64(5), fields["old_count"])
		assert.Equal(t, int64(7), fields["new_count"])
	}
}
