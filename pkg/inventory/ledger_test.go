package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(q int64) Posting    { return Posting{Type: TransactionTypeAdd, Quantity: q} }
func remove(q int64) Posting { return Posting{Type: TransactionTypeRemove, Quantity: q} }

// TestApply は単一ポスティング適用のテスト
func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		count   int64
		posting Posting
		want    int64
		wantErr error
	}{
		{"入庫", 5, add(5), 10, nil},
		{"出庫", 10, remove(3), 7, nil},
		{"全量出庫", 7, remove(7), 0, nil},
		{"在庫ゼロへの入庫", 0, add(1), 1, nil},
		{"在庫不足", 7, remove(8), 7, ErrInsufficientStock},
		{"無効なタイプ", 7, Posting{Type: "transfer", Quantity: 1}, 7, ErrInvalidTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.count, tt.posting)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_InsufficientStockDetails(t *testing.T) {
	_, err := Apply(4, remove(9))

	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(4), ise.Available)
	assert.Equal(t, int64(9), ise.Requested)
}

// TestReverse はポスティング取り消しのテスト
func TestReverse(t *testing.T) {
	tests := []struct {
		name    string
		count   int64
		posting Posting
		want    int64
		wantErr error
	}{
		{"出庫の取り消し", 10, remove(3), 13, nil},
		{"入庫の取り消し", 10, add(5), 5, nil},
		{"入庫の全量取り消し", 5, add(5), 0, nil},
		{"消費済み入庫の取り消し", 2, add(5), 2, ErrInsufficientStock},
		{"無効なタイプ", 2, Posting{Type: "", Quantity: 1}, 2, ErrInvalidTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reverse(tt.count, tt.posting)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReconcile はエントリ修正時の在庫数再計算のテスト
func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		count   int64
		old     Posting
		next    Posting
		want    int64
		wantErr error
	}{
		{"入庫数の増加", 7, add(5), add(8), 10, nil},
		{"入庫数の減少", 10, add(8), add(5), 7, nil},
		{"出庫数の減少", 0, remove(10), remove(3), 7, nil},
		{"出庫数の増加", 7, remove(3), remove(5), 5, nil},
		{"入庫から出庫へ", 10, add(5), remove(5), 0, nil},
		{"出庫から入庫へ", 2, remove(3), add(3), 8, nil},
		{"同一内容", 4, add(2), add(2), 4, nil},
		{"中間値が負でも最終値が正", 1, add(5), add(6), 2, nil},
		{"出庫数の増加で在庫不足", 7, remove(3), remove(11), 7, ErrInsufficientStock},
		{"入庫の減少で在庫不足", 1, add(5), add(1), 1, ErrInsufficientStock},
		{"中間値が負で出庫", 1, add(5), remove(1), 1, ErrInsufficientStock},
		{"無効な旧タイプ", 1, Posting{Type: "x", Quantity: 1}, add(1), 1, ErrInvalidTransactionType},
		{"無効な新タイプ", 1, add(1), Posting{Type: "x", Quantity: 1}, 1, ErrInvalidTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.count, tt.old, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReconcile_MatchesFreshCreate は修正結果が新規作成時と同じになることを確認
func TestReconcile_MatchesFreshCreate(t *testing.T) {
	postings := []Posting{add(1), add(4), add(9), remove(1), remove(2), remove(6)}

	for base := int64(0); base <= 12; base++ {
		for _, old := range postings {
			for _, next := range postings {
				// oldを適用済みの状態から開始
				current, err := Apply(base, old)
				if err != nil {
					continue
				}

				fresh, freshErr := Apply(base, next)
				got, err := Reconcile(current, old, next)
				if freshErr != nil {
					assert.Error(t, err, "base=%d old=%s next=%s", base, old, next)
					assert.Equal(t, current, got)
					continue
				}
				require.NoError(t, err, "base=%d old=%s next=%s", base, old, next)
				assert.Equal(t, fresh, got, "base=%d old=%s next=%s", base, old, next)
			}
		}
	}
}

// TestReverse_UndoesApply は取り消しが適用の逆になることを確認
func TestReverse_UndoesApply(t *testing.T) {
	for base := int64(0); base <= 10; base++ {
		for _, p := range []Posting{add(3), remove(3), add(10), remove(10)} {
			applied, err := Apply(base, p)
			if err != nil {
				continue
			}
			got, err := Reverse(applied, p)
			require.NoError(t, err)
			assert.Equal(t, base, got)
		}
	}
}

// TestReplay は台帳再計算のテスト
func TestReplay(t *testing.T) {
	entries := []LedgerEntry{
		{ID: 1, LotID: 42, Type: TransactionTypeAdd, Quantity: 5},
		{ID: 2, LotID: 42, Type: TransactionTypeRemove, Quantity: 3},
		{ID: 3, LotID: 42, Type: TransactionTypeAdd, Quantity: 1},
	}

	got, err := Replay(5, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got)

	got, err = Replay(0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestReplay_NegativeRunningCount(t *testing.T) {
	entries := []LedgerEntry{
		{ID: 1, LotID: 42, Type: TransactionTypeRemove, Quantity: 3},
		{ID: 2, LotID: 42, Type: TransactionTypeRemove, Quantity: 3},
	}

	got, err := Replay(4, entries)
	require.Error(t, err)
	assert.Equal(t, int64(1), got)

	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(42), ise.LotID)
	assert.Contains(t, err.Error(), "エントリ 2")
}

func TestPosting_Delta(t *testing.T) {
	d, err := add(4).Delta()
	require.NoError(t, err)
	assert.Equal(t, int64(4), d)

	d, err = remove(4).Delta()
	require.NoError(t, err)
	assert.Equal(t, int64(-4), d)

	_, err = Posting{Type: "adjust", Quantity: 4}.Delta()
	assert.ErrorIs(t, err, ErrInvalidTransactionType)

	assert.Equal(t, "add(4)", add(4).String())
}

func BenchmarkReconcile(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Reconcile(int64(i%100)+10, add(5), remove(int64(i%10)))
	}
}
