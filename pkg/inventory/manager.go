package inventory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Manager implements item, lot and ledger management on top of a Storage
// 商品・ロット・台帳管理の実装
type Manager struct {
	storage   Storage        // ストレージ層
	publisher EventPublisher // イベント発行者
	logger    *zap.Logger    // ログ
	config    *Config        // 設定
	metrics   *Metrics       // メトリクス（任意）
	clock     func() time.Time
}

// すべてのインターフェースを実装することを明示
var (
	_ ItemManager   = (*Manager)(nil)
	_ LotManager    = (*Manager)(nil)
	_ LedgerManager = (*Manager)(nil)
)

// Config holds configuration for the inventory manager
// 在庫マネージャーの設定を保持
type Config struct {
	AuditEnabled       bool  `yaml:"audit_enabled"`        // 監査ログ有効
	LowStockThreshold  int64 `yaml:"low_stock_threshold"`  // 低在庫閾値
	ExpiringWithinDays int   `yaml:"expiring_within_days"` // 期限切れ間近とみなす日数
}

// DefaultConfig returns the configuration used when none is given
// デフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		AuditEnabled:       true,
		LowStockThreshold:  10,
		ExpiringWithinDays: 30,
	}
}

// Option configures optional Manager dependencies
type Option func(*Manager)

// WithClock replaces the wall clock used to decide "today"
// 「本日」の判定に使う時計を差し替える
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.clock = now
		}
	}
}

// WithMetrics records ledger operations in m
// 台帳操作をメトリクスに記録する
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a new inventory manager
// 新しい在庫マネージャーを作成
func NewManager(storage Storage, publisher EventPublisher, logger *zap.Logger, config *Config, opts ...Option) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
		config:    config,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// today returns the current calendar date of the manager's clock
func (m *Manager) today() Date {
	return DateOf(m.clock())
}

// withTx runs fn inside one store transaction. Any error from fn rolls the
// transaction back and is returned unchanged.
// トランザクション内で処理を実行
func (m *Manager) withTx(ctx context.Context, operation string, fn func(tx Tx) error) error {
	tx, err := m.storage.Begin(ctx)
	if err != nil {
		return NewStorageError(operation, "トランザクション開始に失敗しました", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("ロールバックに失敗しました",
				zap.String("operation", operation),
				zap.Error(rbErr),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError(operation, "コミットに失敗しました", err)
	}
	return nil
}

type contextKey string

const userIDKey contextKey = "user_id"

// defaultUserID is recorded when the context carries no user
const defaultUserID = "system"

// WithUser returns a context carrying the acting user's ID
// 操作ユーザーIDをコンテキストに設定
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserFromContext extracts user ID from context
// コンテキストからユーザーIDを取得
func UserFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		return userID
	}
	return defaultUserID
}

// publishStockChanged emits the post-commit events of a ledger mutation.
// Failures are logged only; the ledger write is already durable.
// 台帳変更後のイベントを発行
func (m *Manager) publishStockChanged(ctx context.Context, lot *StockLot, event StockChangedEvent) {
	if m.config.AuditEnabled {
		m.logger.Info("台帳監査",
			zap.String("operation", event.Operation),
			zap.String("item_id", event.ItemID),
			zap.Int64("lot_id", event.LotID),
			zap.Int64("entry_id", event.EntryID),
			zap.Int64("old_count", event.OldCount),
			zap.Int64("new_count", event.NewCount),
			zap.String("user_id", event.UserID),
		)
	}

	if m.publisher == nil {
		return
	}

	if err := m.publisher.PublishStockChanged(ctx, event); err != nil {
		m.logger.Error("イベント発行に失敗しました", zap.Int64("lot_id", lot.ID), zap.Error(err))
	}

	if lot.Count <= m.config.LowStockThreshold {
		low := LowStockEvent{
			ItemID:         lot.ItemID,
			LotID:          lot.ID,
			ExpirationDate: lot.ExpirationDate,
			Count:          lot.Count,
			Threshold:      m.config.LowStockThreshold,
			Timestamp:      event.Timestamp,
		}
		if err := m.publisher.PublishLowStock(ctx, low); err != nil {
			m.logger.Error("低在庫イベント発行に失敗しました", zap.Int64("lot_id", lot.ID), zap.Error(err))
		}
	}
}

// withLotID fills in the lot on an InsufficientStockError raised by the
// pure ledger functions.
func withLotID(err error, lotID int64) error {
	var ise *InsufficientStockError
	if errors.As(err, &ise) && ise.LotID == 0 {
		ise.LotID = lotID
	}
	return err
}
