package inventory

import (
	"context"
	"time"
)

// ItemManager defines interface for item management
// 商品管理のインターフェースを定義
type ItemManager interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, itemID string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItems(ctx context.Context, offset, limit int) ([]Item, error)
	SearchItems(ctx context.Context, query string) ([]Item, error)
}

// LotManager defines interface for stock lot management
// 在庫ロット管理のインターフェースを定義
type LotManager interface {
	CreateLot(ctx context.Context, lot NewLot) (*StockLot, error)
	GetLot(ctx context.Context, lotID int64) (*StockLot, error)
	UpdateLot(ctx context.Context, lotID int64, update LotUpdate) (*StockLot, error)
	DeleteLot(ctx context.Context, lotID int64) error
	ListLotsByItem(ctx context.Context, itemID string) ([]StockLot, error)
}

// LedgerManager defines interface for ledger entry management
// 台帳エントリ管理のインターフェースを定義
type LedgerManager interface {
	// 基本的な在庫操作 - Basic inventory operations
	Add(ctx context.Context, lotID, quantity int64, reference string) (*LedgerEntry, error)
	Remove(ctx context.Context, lotID, quantity int64, reference string) (*LedgerEntry, error)

	// エントリ操作 - Entry operations
	CreateEntry(ctx context.Context, lotID int64, posting Posting, reference string) (*LedgerEntry, error)
	UpdateEntry(ctx context.Context, entryID int64, posting Posting) (*LedgerEntry, error)
	DeleteEntry(ctx context.Context, entryID int64) error

	// 履歴管理 - History management
	GetEntry(ctx context.Context, entryID int64) (*LedgerEntry, error)
	ListEntriesByLot(ctx context.Context, lotID int64, limit int) ([]LedgerEntry, error)
}

// Tracker defines interface for expiry tracking and ledger audit
// 有効期限追跡と台帳監査のインターフェースを定義
type Tracker interface {
	ExpiringLots(ctx context.Context, withinDays int) ([]StockLot, error)
	ExpiredLots(ctx context.Context) ([]StockLot, error)
	VerifyLot(ctx context.Context, lotID int64) (*LotAudit, error)
}

// Repository holds the row operations shared by Storage and Tx
// ストレージとトランザクションで共通の行操作
type Repository interface {
	// Item management
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, itemID string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItems(ctx context.Context, offset, limit int) ([]Item, error)
	SearchItems(ctx context.Context, query string) ([]Item, error)

	// Lot management
	CreateLot(ctx context.Context, lot *StockLot) error
	GetLot(ctx context.Context, lotID int64) (*StockLot, error)
	// LockLot reads the lot and holds its row lock until the transaction ends
	LockLot(ctx context.Context, lotID int64) (*StockLot, error)
	// UpdateLot writes the lot when the stored version equals lot.Version-1
	UpdateLot(ctx context.Context, lot *StockLot) error
	DeleteLot(ctx context.Context, lotID int64) error
	ListLotsByItem(ctx context.Context, itemID string) ([]StockLot, error)
	ListLotsExpiringBetween(ctx context.Context, from, to Date) ([]StockLot, error)
	ListLotsExpiredBefore(ctx context.Context, day Date) ([]StockLot, error)

	// Ledger entries
	CreateEntry(ctx context.Context, entry *LedgerEntry) error
	GetEntry(ctx context.Context, entryID int64) (*LedgerEntry, error)
	UpdateEntry(ctx context.Context, entry *LedgerEntry) error
	DeleteEntry(ctx context.Context, entryID int64) error
	// ListEntriesByLot returns entries oldest first; limit <= 0 means all
	ListEntriesByLot(ctx context.Context, lotID int64, limit int) ([]LedgerEntry, error)
}

// Tx is a store transaction. Nothing it writes is visible until Commit.
// ストアトランザクション
type Tx interface {
	Repository
	Commit() error
	Rollback() error
}

// Storage defines the interface for data persistence layer
// データ永続化層のインターフェースを定義
type Storage interface {
	Repository

	// Transaction management
	Begin(ctx context.Context) (Tx, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// EventPublisher defines interface for publishing inventory events
// 在庫イベント発行のインターフェースを定義
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, event StockChangedEvent) error
	PublishLowStock(ctx context.Context, event LowStockEvent) error
}

// Events for ledger operations
// 台帳操作のイベント定義

// StockChangedEvent represents a committed change to a lot's count
// ロット在庫数の変更イベントを表現
type StockChangedEvent struct {
	ItemID    string    `json:"item_id"`
	LotID     int64     `json:"lot_id"`
	EntryID   int64     `json:"entry_id"`
	OldCount  int64     `json:"old_count"`
	NewCount  int64     `json:"new_count"`
	Operation string    `json:"operation"` // create / update / delete
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
}

// LowStockEvent represents a lot at or below the low stock threshold
// 低在庫イベントを表現
type LowStockEvent struct {
	ItemID         string    `json:"item_id"`
	LotID          int64     `json:"lot_id"`
	ExpirationDate Date      `json:"expiration_date"`
	Count          int64     `json:"count"`
	Threshold      int64     `json:"threshold"`
	Timestamp      time.Time `json:"timestamp"`
}
