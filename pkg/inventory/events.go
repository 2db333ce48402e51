package inventory

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher is an EventPublisher that writes events to a zap logger
// イベントをログに出力するEventPublisher
type LogPublisher struct {
	logger *zap.Logger
}

var _ EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that logs every event
// 新しいログイベント発行者を作成
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.Named("events")}
}

// PublishStockChanged logs a stock change event
func (p *LogPublisher) PublishStockChanged(ctx context.Context, event StockChangedEvent) error {
	p.logger.Info("在庫変更イベント",
		zap.String("operation", event.Operation),
		zap.String("item_id", event.ItemID),
		zap.Int64("lot_id", event.LotID),
		zap.Int64("entry_id", event.EntryID),
		zap.Int64("old_count", event.OldCount),
		zap.Int64("new_count", event.NewCount),
		zap.String("reference", event.Reference),
		zap.String("user_id", event.UserID),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}

// PublishLowStock logs a low stock event
func (p *LogPublisher) PublishLowStock(ctx context.Context, event LowStockEvent) error {
	p.logger.Warn("低在庫イベント",
		zap.String("item_id", event.ItemID),
		zap.Int64("lot_id", event.LotID),
		zap.String("expiration_date", event.ExpirationDate.String()),
		zap.Int64("count", event.Count),
		zap.Int64("threshold", event.Threshold),
	)
	return nil
}
