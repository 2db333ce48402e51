package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestErrorMatching はエラー判定のテスト
func TestErrorMatching(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matches []error
		not     []error
	}{
		{
			name:    "バリデーション",
			err:     NewValidationError("name", "空です", ""),
			matches: []error{ErrValidation},
			not:     []error{ErrInvalidEnumValue},
		},
		{
			name:    "カタログ外の値",
			err:     NewInvalidEnumValueError("unit", "dozen"),
			matches: []error{ErrInvalidEnumValue, ErrValidation},
		},
		{
			name:    "過去の有効期限",
			err:     &PastExpirationError{ExpirationDate: NewDate(2020, time.January, 1), Today: NewDate(2025, time.January, 1)},
			matches: []error{ErrPastExpiration, ErrValidation},
		},
		{
			name:    "ロット重複",
			err:     &DuplicateLotError{ItemID: "ITEM", ExpirationDate: NewDate(2026, time.January, 1)},
			matches: []error{ErrDuplicateLot},
			not:     []error{ErrValidation},
		},
		{
			name:    "在庫不足（ラップ済み）",
			err:     fmt.Errorf("出庫処理: %w", &InsufficientStockError{LotID: 1, Available: 2, Requested: 3}),
			matches: []error{ErrInsufficientStock},
		},
		{
			name:    "無効なタイプ",
			err:     &InvalidTransactionTypeError{Type: "adjust"},
			matches: []error{ErrInvalidTransactionType},
			not:     []error{ErrValidation},
		},
		{
			name:    "ストレージエラー",
			err:     NewStorageError("get_lot", "取得に失敗しました", sql.ErrConnDone),
			matches: []error{sql.ErrConnDone},
			not:     []error{ErrLotNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, target := range tt.matches {
				assert.ErrorIs(t, tt.err, target)
			}
			for _, target := range tt.not {
				assert.NotErrorIs(t, tt.err, target)
			}
		})
	}
}

func TestWrapStorageError(t *testing.T) {
	// ドメインエラーはそのまま返す
	notFound := fmt.Errorf("lot 7: %w", ErrLotNotFound)
	assert.Same(t, notFound, wrapStorageError("get_lot", "失敗", notFound))

	ise := &InsufficientStockError{Available: 1, Requested: 2}
	assert.Same(t, ise, wrapStorageError("update_lot", "失敗", ise))

	// それ以外はStorageErrorでラップ
	wrapped := wrapStorageError("get_lot", "取得に失敗しました", sql.ErrConnDone)
	var storageErr *StorageError
	assert.ErrorAs(t, wrapped, &storageErr)
	assert.Equal(t, "get_lot", storageErr.Operation)
	assert.ErrorIs(t, wrapped, sql.ErrConnDone)
	assert.Contains(t, wrapped.Error(), "get_lot")
}

func TestWithLotID(t *testing.T) {
	err := withLotID(&InsufficientStockError{Available: 1, Requested: 2}, 9)

	var ise *InsufficientStockError
	assert.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(9), ise.LotID)

	other := errors.New("other")
	assert.Equal(t, other, withLotID(other, 9))
}
