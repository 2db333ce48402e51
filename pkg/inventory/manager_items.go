package inventory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// CreateItem validates and persists a new item
// 商品を作成
func (m *Manager) CreateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return NewValidationError("item", "商品が指定されていません", "nil")
	}
	if item.ID == "" {
		item.ID = NewItemID()
	}
	if item.Unit == "" {
		item.Unit = UnitEach
	}
	if item.Category == "" {
		item.Category = CategoryOTCMedicines
	}

	if err := ValidateItemFields(item); err != nil {
		return err
	}

	now := m.clock()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := m.storage.CreateItem(ctx, item); err != nil {
		return wrapStorageError("create_item", "商品作成に失敗しました", err)
	}

	m.logger.Info("商品作成完了",
		zap.String("item_id", item.ID),
		zap.String("name", item.Name),
		zap.String("category", string(item.Category)),
	)
	return nil
}

// GetItem retrieves an item by ID
// 商品を取得
func (m *Manager) GetItem(ctx context.Context, itemID string) (*Item, error) {
	if err := ValidateItemID(itemID); err != nil {
		return nil, err
	}
	item, err := m.storage.GetItem(ctx, itemID)
	if err != nil {
		return nil, wrapStorageError("get_item", "商品取得に失敗しました", err)
	}
	return item, nil
}

// UpdateItem validates and replaces an existing item's fields
// 商品を更新
func (m *Manager) UpdateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return NewValidationError("item", "商品が指定されていません", "nil")
	}
	if err := ValidateItemFields(item); err != nil {
		return err
	}

	existing, err := m.storage.GetItem(ctx, item.ID)
	if err != nil {
		return wrapStorageError("get_item", "商品取得に失敗しました", err)
	}

	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = m.clock()

	if err := m.storage.UpdateItem(ctx, item); err != nil {
		return wrapStorageError("update_item", "商品更新に失敗しました", err)
	}

	m.logger.Info("商品更新完了", zap.String("item_id", item.ID))
	return nil
}

// DeleteItem removes an item together with its lots and their entries
// 商品と関連するロット・台帳エントリを削除
func (m *Manager) DeleteItem(ctx context.Context, itemID string) error {
	if err := ValidateItemID(itemID); err != nil {
		return err
	}

	var lotCount int
	err := m.withTx(ctx, "delete_item", func(tx Tx) error {
		if _, err := tx.GetItem(ctx, itemID); err != nil {
			return wrapStorageError("get_item", "商品取得に失敗しました", err)
		}
		lots, err := tx.ListLotsByItem(ctx, itemID)
		if err != nil {
			return wrapStorageError("list_lots", "ロット一覧取得に失敗しました", err)
		}
		lotCount = len(lots)
		if err := tx.DeleteItem(ctx, itemID); err != nil {
			return wrapStorageError("delete_item", "商品削除に失敗しました", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("商品削除完了",
		zap.String("item_id", itemID),
		zap.Int("deleted_lots", lotCount),
	)
	return nil
}

// ListItems returns items ordered by name
// 商品一覧を取得
func (m *Manager) ListItems(ctx context.Context, offset, limit int) ([]Item, error) {
	if offset < 0 {
		return nil, NewValidationError("offset", "オフセットは0以上である必要があります", fmt.Sprintf("%d", offset))
	}
	limit = normalizeLimit(limit)

	items, err := m.storage.ListItems(ctx, offset, limit)
	if err != nil {
		return nil, wrapStorageError("list_items", "商品一覧取得に失敗しました", err)
	}
	return items, nil
}

// SearchItems matches query against name, brand name and generic name
// 商品名・ブランド名・一般名で商品を検索
func (m *Manager) SearchItems(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewValidationError("query", "検索キーワードが空です", query)
	}

	items, err := m.storage.SearchItems(ctx, query)
	if err != nil {
		return nil, wrapStorageError("search_items", "商品検索に失敗しました", err)
	}
	return items, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
