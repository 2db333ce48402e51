package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreateLot creates a stock lot for an existing item
// 既存商品に在庫ロットを作成
func (m *Manager) CreateLot(ctx context.Context, in NewLot) (*StockLot, error) {
	if err := ValidateItemID(in.ItemID); err != nil {
		return nil, err
	}
	if in.ExpirationDate.IsZero() {
		return nil, NewValidationError("expiration_date", "有効期限が指定されていません", "")
	}
	if err := ValidateLotCount(in.Count); err != nil {
		return nil, err
	}

	now := m.clock()
	today := DateOf(now)
	if in.ExpirationDate.Before(today) {
		return nil, &PastExpirationError{ExpirationDate: in.ExpirationDate, Today: today}
	}

	delivery := in.DeliveryDate
	if delivery.IsZero() {
		delivery = today
	}

	lot := &StockLot{
		ItemID:         in.ItemID,
		DeliveryDate:   delivery,
		ExpirationDate: in.ExpirationDate,
		Count:          in.Count,
		InitialCount:   in.Count,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := m.withTx(ctx, "create_lot", func(tx Tx) error {
		if _, err := tx.GetItem(ctx, in.ItemID); err != nil {
			return wrapStorageError("get_item", "商品取得に失敗しました", err)
		}
		if err := tx.CreateLot(ctx, lot); err != nil {
			return wrapStorageError("create_lot", "ロット作成に失敗しました", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("ロット作成完了",
		zap.Int64("lot_id", lot.ID),
		zap.String("item_id", lot.ItemID),
		zap.String("expiration_date", lot.ExpirationDate.String()),
		zap.Int64("count", lot.Count),
	)
	return lot, nil
}

// GetLot retrieves a lot by ID
// ロットを取得
func (m *Manager) GetLot(ctx context.Context, lotID int64) (*StockLot, error) {
	if err := validateID("lot_id", lotID); err != nil {
		return nil, err
	}
	lot, err := m.storage.GetLot(ctx, lotID)
	if err != nil {
		return nil, wrapStorageError("get_lot", "ロット取得に失敗しました", err)
	}
	return lot, nil
}

// UpdateLot edits a lot's delivery and expiration dates. Expiration may be
// moved into the past; the (item, expiration) uniqueness still applies.
// ロットの納品日・有効期限を更新
func (m *Manager) UpdateLot(ctx context.Context, lotID int64, update LotUpdate) (*StockLot, error) {
	if err := validateID("lot_id", lotID); err != nil {
		return nil, err
	}
	if update.DeliveryDate == nil && update.ExpirationDate == nil {
		return nil, NewValidationError("lot", "更新項目が指定されていません", "")
	}
	if update.ExpirationDate != nil && update.ExpirationDate.IsZero() {
		return nil, NewValidationError("expiration_date", "有効期限が指定されていません", "")
	}
	if update.DeliveryDate != nil && update.DeliveryDate.IsZero() {
		return nil, NewValidationError("delivery_date", "納品日が指定されていません", "")
	}

	var lot *StockLot
	err := m.withTx(ctx, "update_lot", func(tx Tx) error {
		var err error
		lot, err = tx.LockLot(ctx, lotID)
		if err != nil {
			return wrapStorageError("lock_lot", "ロット取得に失敗しました", err)
		}

		if update.DeliveryDate != nil {
			lot.DeliveryDate = *update.DeliveryDate
		}
		if update.ExpirationDate != nil {
			lot.ExpirationDate = *update.ExpirationDate
		}
		lot.Version++
		lot.UpdatedAt = m.clock()

		if err := tx.UpdateLot(ctx, lot); err != nil {
			return wrapStorageError("update_lot", "ロット更新に失敗しました", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("ロット更新完了",
		zap.Int64("lot_id", lot.ID),
		zap.String("delivery_date", lot.DeliveryDate.String()),
		zap.String("expiration_date", lot.ExpirationDate.String()),
	)
	return lot, nil
}

// DeleteLot removes a lot and its ledger entries
// ロットと台帳エントリを削除
func (m *Manager) DeleteLot(ctx context.Context, lotID int64) error {
	if err := validateID("lot_id", lotID); err != nil {
		return err
	}

	err := m.withTx(ctx, "delete_lot", func(tx Tx) error {
		if _, err := tx.LockLot(ctx, lotID); err != nil {
			return wrapStorageError("lock_lot", "ロット取得に失敗しました", err)
		}
		if err := tx.DeleteLot(ctx, lotID); err != nil {
			return wrapStorageError("delete_lot", "ロット削除に失敗しました", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("ロット削除完了", zap.Int64("lot_id", lotID))
	return nil
}

// ListLotsByItem returns an item's lots ordered by expiration date
// 商品のロット一覧を有効期限順に取得
func (m *Manager) ListLotsByItem(ctx context.Context, itemID string) ([]StockLot, error) {
	if err := ValidateItemID(itemID); err != nil {
		return nil, err
	}
	if _, err := m.storage.GetItem(ctx, itemID); err != nil {
		return nil, wrapStorageError("get_item", "商品取得に失敗しました", err)
	}

	lots, err := m.storage.ListLotsByItem(ctx, itemID)
	if err != nil {
		return nil, wrapStorageError("list_lots", "ロット一覧取得に失敗しました", err)
	}
	return lots, nil
}

// validateID 数値IDをバリデーション
func validateID(field string, id int64) error {
	if id <= 0 {
		return NewValidationError(field, "IDは正の値である必要があります", fmt.Sprintf("%d", id))
	}
	return nil
}
