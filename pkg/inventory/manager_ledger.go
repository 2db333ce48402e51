package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Ledger operation names used in events, logs and metrics
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Add records an inbound entry against a lot
// ロットに入庫を記録
func (m *Manager) Add(ctx context.Context, lotID, quantity int64, reference string) (*LedgerEntry, error) {
	return m.CreateEntry(ctx, lotID, Posting{Type: TransactionTypeAdd, Quantity: quantity}, reference)
}

// Remove records an outbound entry against a lot
// ロットから出庫を記録
func (m *Manager) Remove(ctx context.Context, lotID, quantity int64, reference string) (*LedgerEntry, error) {
	return m.CreateEntry(ctx, lotID, Posting{Type: TransactionTypeRemove, Quantity: quantity}, reference)
}

// CreateEntry appends a ledger entry and applies it to the lot's count in
// one transaction.
// 台帳エントリを作成し、ロット在庫数に反映
func (m *Manager) CreateEntry(ctx context.Context, lotID int64, posting Posting, reference string) (*LedgerEntry, error) {
	start := time.Now()
	entry, lot, oldCount, err := m.createEntry(ctx, lotID, posting, reference)
	m.metrics.observe(OperationCreate, posting.Type, start, err)
	if err != nil {
		m.logger.Warn("台帳エントリ作成に失敗しました",
			zap.Int64("lot_id", lotID),
			zap.String("type", string(posting.Type)),
			zap.Int64("quantity", posting.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Info("台帳エントリ作成完了",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("lot_id", lotID),
		zap.String("type", string(entry.Type)),
		zap.Int64("quantity", entry.Quantity),
		zap.Int64("count", lot.Count),
	)
	m.publishStockChanged(ctx, lot, StockChangedEvent{
		ItemID:    lot.ItemID,
		LotID:     lot.ID,
		EntryID:   entry.ID,
		OldCount:  oldCount,
		NewCount:  lot.Count,
		Operation: OperationCreate,
		Reference: entry.Reference,
		Timestamp: entry.CreatedAt,
		UserID:    entry.UserID,
	})
	return entry, nil
}

func (m *Manager) createEntry(ctx context.Context, lotID int64, posting Posting, reference string) (*LedgerEntry, *StockLot, int64, error) {
	if err := validateID("lot_id", lotID); err != nil {
		return nil, nil, 0, err
	}
	if err := ValidatePosting(posting); err != nil {
		return nil, nil, 0, err
	}
	if err := ValidateReference(reference); err != nil {
		return nil, nil, 0, err
	}
	userID := UserFromContext(ctx)
	if err := ValidateUserID(userID); err != nil {
		return nil, nil, 0, err
	}

	var (
		entry    *LedgerEntry
		lot      *StockLot
		oldCount int64
	)
	err := m.withTx(ctx, "create_entry", func(tx Tx) error {
		var err error
		lot, err = tx.LockLot(ctx, lotID)
		if err != nil {
			return wrapStorageError("lock_lot", "ロット取得に失敗しました", err)
		}

		next, err := Apply(lot.Count, posting)
		if err != nil {
			return withLotID(err, lotID)
		}

		now := m.clock()
		oldCount = lot.Count
		lot.Count = next
		lot.Version++
		lot.UpdatedAt = now
		if err := tx.UpdateLot(ctx, lot); err != nil {
			return wrapStorageError("update_lot", "ロット更新に失敗しました", err)
		}

		entry = &LedgerEntry{
			LotID:     lotID,
			UserID:    userID,
			Quantity:  posting.Quantity,
			Type:      posting.Type,
			Reference: reference,
			CreatedAt: now,
			UpdatedAt: now,
			UpdatedBy: userID,
		}
		if err := tx.CreateEntry(ctx, entry); err != nil {
			return wrapStorageError("create_entry", "台帳エントリ作成に失敗しました", err)
		}
		return nil
	})
	return entry, lot, oldCount, err
}

// UpdateEntry replaces an entry's type and quantity. The old posting is
// reversed and the new one applied in the same transaction, so the lot ends
// up as if the entry had been created with the new values.
// 台帳エントリを更新し、差分をロット在庫数に反映
func (m *Manager) UpdateEntry(ctx context.Context, entryID int64, posting Posting) (*LedgerEntry, error) {
	start := time.Now()
	entry, lot, oldCount, err := m.updateEntry(ctx, entryID, posting)
	m.metrics.observe(OperationUpdate, posting.Type, start, err)
	if err != nil {
		m.logger.Warn("台帳エントリ更新に失敗しました",
			zap.Int64("entry_id", entryID),
			zap.String("type", string(posting.Type)),
			zap.Int64("quantity", posting.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Info("台帳エントリ更新完了",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("lot_id", entry.LotID),
		zap.String("type", string(entry.Type)),
		zap.Int64("quantity", entry.Quantity),
		zap.Int64("count", lot.Count),
	)
	m.publishStockChanged(ctx, lot, StockChangedEvent{
		ItemID:    lot.ItemID,
		LotID:     lot.ID,
		EntryID:   entry.ID,
		OldCount:  oldCount,
		NewCount:  lot.Count,
		Operation: OperationUpdate,
		Reference: entry.Reference,
		Timestamp: entry.UpdatedAt,
		UserID:    entry.UpdatedBy,
	})
	return entry, nil
}

func (m *Manager) updateEntry(ctx context.Context, entryID int64, posting Posting) (*LedgerEntry, *StockLot, int64, error) {
	if err := validateID("entry_id", entryID); err != nil {
		return nil, nil, 0, err
	}
	if err := ValidatePosting(posting); err != nil {
		return nil, nil, 0, err
	}
	userID := UserFromContext(ctx)
	if err := ValidateUserID(userID); err != nil {
		return nil, nil, 0, err
	}

	var (
		entry    *LedgerEntry
		lot      *StockLot
		oldCount int64
	)
	err := m.withTx(ctx, "update_entry", func(tx Tx) error {
		var err error
		entry, lot, err = lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		next, err := Reconcile(lot.Count, entry.Posting(), posting)
		if err != nil {
			return withLotID(err, lot.ID)
		}

		now := m.clock()
		oldCount = lot.Count
		lot.Count = next
		lot.Version++
		lot.UpdatedAt = now
		if err := tx.UpdateLot(ctx, lot); err != nil {
			return wrapStorageError("update_lot", "ロット更新に失敗しました", err)
		}

		entry.Type = posting.Type
		entry.Quantity = posting.Quantity
		entry.UpdatedAt = now
		entry.UpdatedBy = userID
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return wrapStorageError("update_entry", "台帳エントリ更新に失敗しました", err)
		}
		return nil
	})
	return entry, lot, oldCount, err
}

// DeleteEntry removes an entry and reverses its effect on the lot's count.
// Deleting an Add whose stock has already been removed is rejected.
// 台帳エントリを削除し、ロット在庫数から効果を取り消す
func (m *Manager) DeleteEntry(ctx context.Context, entryID int64) error {
	start := time.Now()
	entry, lot, oldCount, err := m.deleteEntry(ctx, entryID)

	var entryType TransactionType
	if entry != nil {
		entryType = entry.Type
	}
	m.metrics.observe(OperationDelete, entryType, start, err)
	if err != nil {
		m.logger.Warn("台帳エントリ削除に失敗しました",
			zap.Int64("entry_id", entryID),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("台帳エントリ削除完了",
		zap.Int64("entry_id", entryID),
		zap.Int64("lot_id", lot.ID),
		zap.Int64("count", lot.Count),
	)
	m.publishStockChanged(ctx, lot, StockChangedEvent{
		ItemID:    lot.ItemID,
		LotID:     lot.ID,
		EntryID:   entryID,
		OldCount:  oldCount,
		NewCount:  lot.Count,
		Operation: OperationDelete,
		Reference: entry.Reference,
		Timestamp: lot.UpdatedAt,
		UserID:    UserFromContext(ctx),
	})
	return nil
}

func (m *Manager) deleteEntry(ctx context.Context, entryID int64) (*LedgerEntry, *StockLot, int64, error) {
	if err := validateID("entry_id", entryID); err != nil {
		return nil, nil, 0, err
	}

	var (
		entry    *LedgerEntry
		lot      *StockLot
		oldCount int64
	)
	err := m.withTx(ctx, "delete_entry", func(tx Tx) error {
		var err error
		entry, lot, err = lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		next, err := Reverse(lot.Count, entry.Posting())
		if err != nil {
			return withLotID(err, lot.ID)
		}

		oldCount = lot.Count
		lot.Count = next
		lot.Version++
		lot.UpdatedAt = m.clock()
		if err := tx.UpdateLot(ctx, lot); err != nil {
			return wrapStorageError("update_lot", "ロット更新に失敗しました", err)
		}
		if err := tx.DeleteEntry(ctx, entryID); err != nil {
			return wrapStorageError("delete_entry", "台帳エントリ削除に失敗しました", err)
		}
		return nil
	})
	return entry, lot, oldCount, err
}

// lockEntry locks the lot that owns entryID and returns the entry as read
// under that lock.
// エントリの所属ロットをロックし、ロック下でエントリを再取得
func lockEntry(ctx context.Context, tx Tx, entryID int64) (*LedgerEntry, *StockLot, error) {
	entry, err := tx.GetEntry(ctx, entryID)
	if err != nil {
		return nil, nil, wrapStorageError("get_entry", "台帳エントリ取得に失敗しました", err)
	}

	lot, err := tx.LockLot(ctx, entry.LotID)
	if err != nil {
		return nil, nil, wrapStorageError("lock_lot", "ロット取得に失敗しました", err)
	}

	entry, err = tx.GetEntry(ctx, entryID)
	if err != nil {
		return nil, nil, wrapStorageError("get_entry", "台帳エントリ取得に失敗しました", err)
	}
	if entry.LotID != lot.ID {
		return nil, nil, ErrVersionMismatch
	}
	return entry, lot, nil
}

// GetEntry retrieves a ledger entry by ID
// 台帳エントリを取得
func (m *Manager) GetEntry(ctx context.Context, entryID int64) (*LedgerEntry, error) {
	if err := validateID("entry_id", entryID); err != nil {
		return nil, err
	}
	entry, err := m.storage.GetEntry(ctx, entryID)
	if err != nil {
		return nil, wrapStorageError("get_entry", "台帳エントリ取得に失敗しました", err)
	}
	return entry, nil
}

// ListEntriesByLot returns a lot's entries, oldest first
// ロットの台帳エントリを古い順に取得
func (m *Manager) ListEntriesByLot(ctx context.Context, lotID int64, limit int) ([]LedgerEntry, error) {
	if err := validateID("lot_id", lotID); err != nil {
		return nil, err
	}
	if _, err := m.storage.GetLot(ctx, lotID); err != nil {
		return nil, wrapStorageError("get_lot", "ロット取得に失敗しました", err)
	}

	entries, err := m.storage.ListEntriesByLot(ctx, lotID, normalizeLimit(limit))
	if err != nil {
		return nil, wrapStorageError("list_entries", "台帳エントリ取得に失敗しました", err)
	}
	return entries, nil
}
