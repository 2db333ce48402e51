package inventory

import "fmt"

// Posting is the type and quantity of a ledger entry, the only two fields
// that affect a lot's count.
// 在庫数に影響する台帳エントリの種別と数量
type Posting struct {
	Type     TransactionType `json:"type"`
	Quantity int64           `json:"quantity"`
}

// Delta returns the signed change the posting contributes to a lot's count
// 符号付きの在庫変動量を返す
func (p Posting) Delta() (int64, error) {
	switch p.Type {
	case TransactionTypeAdd:
		return p.Quantity, nil
	case TransactionTypeRemove:
		return -p.Quantity, nil
	default:
		return 0, &InvalidTransactionTypeError{Type: p.Type}
	}
}

func (p Posting) String() string {
	return fmt.Sprintf("%s(%d)", p.Type, p.Quantity)
}

// Apply returns count after posting p. A remove larger than count is rejected.
// 在庫数にポスティングを適用
func Apply(count int64, p Posting) (int64, error) {
	delta, err := p.Delta()
	if err != nil {
		return count, err
	}
	if p.Type == TransactionTypeRemove && p.Quantity > count {
		return count, &InsufficientStockError{Available: count, Requested: p.Quantity}
	}
	return count + delta, nil
}

// Reverse undoes p's effect on count. Undoing an add that was already
// consumed by later removes would leave the lot negative and is rejected.
// ポスティングの効果を取り消す
func Reverse(count int64, p Posting) (int64, error) {
	delta, err := p.Delta()
	if err != nil {
		return count, err
	}
	next := count - delta
	if next < 0 {
		return count, &InsufficientStockError{Available: count, Requested: -delta}
	}
	return next, nil
}

// Reconcile replaces old with next on a lot currently at count.
//
// The old posting is reversed into an intermediate count that is never
// persisted and may be transiently negative. next is then applied with the
// remove-sufficiency check made against that intermediate count, so
// remove(10) can be edited into remove(3) even when 10 would not fit the
// original base. A negative final count is rejected. The result equals the
// count the lot would have if the entry had been created with next.
// 旧ポスティングを取り消し、新ポスティングを適用
func Reconcile(count int64, old, next Posting) (int64, error) {
	oldDelta, err := old.Delta()
	if err != nil {
		return count, err
	}
	nextDelta, err := next.Delta()
	if err != nil {
		return count, err
	}

	reversed := count - oldDelta
	if next.Type == TransactionTypeRemove && next.Quantity > reversed {
		return count, &InsufficientStockError{Available: reversed, Requested: next.Quantity}
	}
	result := reversed + nextDelta
	if result < 0 {
		return count, &InsufficientStockError{Available: count, Requested: count - result}
	}
	return result, nil
}

// Replay applies entries in order on top of initial and fails on the first
// entry that would take the running count below zero.
// エントリを順番に再適用して在庫数を再計算
func Replay(initial int64, entries []LedgerEntry) (int64, error) {
	count := initial
	for i := range entries {
		next, err := Apply(count, entries[i].Posting())
		if err != nil {
			if ise, ok := err.(*InsufficientStockError); ok {
				ise.LotID = entries[i].LotID
			}
			return count, fmt.Errorf("エントリ %d の再適用に失敗しました: %w", entries[i].ID, err)
		}
		count = next
	}
	return count, nil
}
