package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestTracking_ExpiringLots は期限間近ロットの検索範囲を確認
func TestTracking_ExpiringLots(t *testing.T) {
	f := newManagerFixture(t)
	tracker := f.manager.Tracker()
	ctx := context.Background()
	today := NewDate(2025, time.April, 1)

	f.storage.On("ListLotsExpiringBetween", ctx, today, today.AddDays(30)).Return([]StockLot{*testLot(3)}, nil).Once()
	f.storage.On("ListLotsExpiringBetween", ctx, today, today.AddDays(7)).Return([]StockLot{}, nil).Once()

	// 0日は設定値を使用
	lots, err := tracker.ExpiringLots(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, lots, 1)

	lots, err = tracker.ExpiringLots(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lots)

	_, err = tracker.ExpiringLots(ctx, -1)
	assert.ErrorIs(t, err, ErrValidation)

	f.storage.AssertExpectations(t)
}

func TestTracking_ExpiredLots(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	f.storage.On("ListLotsExpiredBefore", ctx, NewDate(2025, time.April, 1)).Return([]StockLot{*testLot(4)}, nil)

	lots, err := f.manager.Tracker().ExpiredLots(ctx)

	require.NoError(t, err)
	require.Len(t, lots, 1)
	// 期限切れロットの在庫数は変更されない
	assert.Equal(t, int64(4), lots[0].Count)
	f.storage.AssertExpectations(t)
}

// TestTracking_VerifyLot は台帳の再計算による検証のテスト
func TestTracking_VerifyLot(t *testing.T) {
	tests := []struct {
		name           string
		stored         int64
		entries        []LedgerEntry
		wantReplayed   int64
		wantConsistent bool
		wantProblem    bool
	}{
		{
			name:   "一致",
			stored: 13,
			entries: []LedgerEntry{
				{ID: 1, LotID: 1, Type: TransactionTypeAdd, Quantity: 8},
			},
			wantReplayed:   13,
			wantConsistent: true,
		},
		{
			name:   "不一致",
			stored: 99,
			entries: []LedgerEntry{
				{ID: 1, LotID: 1, Type: TransactionTypeAdd, Quantity: 5},
				{ID: 2, LotID: 1, Type: TransactionTypeRemove, Quantity: 3},
			},
			wantReplayed:   7,
			wantConsistent: false,
		},
		{
			name:   "修正により途中経過が負",
			stored: 0,
			entries: []LedgerEntry{
				{ID: 1, LotID: 1, Type: TransactionTypeRemove, Quantity: 10},
				{ID: 2, LotID: 1, Type: TransactionTypeAdd, Quantity: 5},
			},
			wantReplayed:   0,
			wantConsistent: true,
			wantProblem:    true,
		},
		{
			name:           "エントリなし",
			stored:         5,
			wantReplayed:   5,
			wantConsistent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t)
			ctx := context.Background()

			f.storage.On("GetLot", ctx, int64(1)).Return(testLot(tt.stored), nil)
			f.storage.On("ListEntriesByLot", ctx, int64(1), mock.Anything).Return(tt.entries, nil)

			audit, err := f.manager.Tracker().VerifyLot(ctx, 1)

			require.NoError(t, err)
			assert.Equal(t, tt.stored, audit.StoredCount)
			assert.Equal(t, tt.wantReplayed, audit.ReplayedCount)
			assert.Equal(t, tt.wantConsistent, audit.Consistent)
			assert.Equal(t, len(tt.entries), audit.EntryCount)
			assert.Equal(t, tt.wantProblem, audit.Problem != "")
		})
	}
}

func TestTracking_VerifyLot_NotFound(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	f.storage.On("GetLot", ctx, int64(5)).Return(nil, ErrLotNotFound)

	_, err := f.manager.Tracker().VerifyLot(ctx, 5)
	assert.ErrorIs(t, err, ErrLotNotFound)

	_, err = f.manager.Tracker().VerifyLot(ctx, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewTrackingManager_Defaults(t *testing.T) {
	storage := new(MockStorage)
	tracker := NewTrackingManager(storage, nil, nil)
	ctx := context.Background()

	storage.On("ListLotsExpiringBetween", ctx, mock.Anything, mock.MatchedBy(func(to Date) bool {
		return to.Equal(DateOf(time.Now()).AddDays(DefaultConfig().ExpiringWithinDays))
	})).Return([]StockLot{}, nil)

	_, err := tracker.ExpiringLots(ctx, 0)
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

// TestNewTrackingManager_ConfigAndClock は設定と時計の指定が反映されることを確認
func TestNewTrackingManager_ConfigAndClock(t *testing.T) {
	storage := new(MockStorage)
	now := time.Date(2030, time.January, 10, 23, 0, 0, 0, time.UTC)
	tracker := NewTrackingManager(storage, nil, &Config{ExpiringWithinDays: 14}, WithTrackingClock(func() time.Time { return now }))
	ctx := context.Background()
	today := NewDate(2030, time.January, 10)

	storage.On("ListLotsExpiringBetween", ctx, today, today.AddDays(14)).Return([]StockLot{}, nil).Once()
	storage.On("ListLotsExpiredBefore", ctx, today).Return([]StockLot{}, nil).Once()

	_, err := tracker.ExpiringLots(ctx, 0)
	require.NoError(t, err)
	_, err = tracker.ExpiredLots(ctx)
	require.NoError(t, err)
	storage.AssertExpectations(t)
}
