package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TrackingManager handles expiry tracking and ledger audit
// 有効期限追跡と台帳監査を処理
type TrackingManager struct {
	storage Storage
	logger  *zap.Logger
	config  *Config
	clock   func() time.Time
}

var _ Tracker = (*TrackingManager)(nil)

// TrackingOption configures a TrackingManager
type TrackingOption func(*TrackingManager)

// WithTrackingClock overrides the clock used to determine today
// 本日の判定に使う時計を差し替え
func WithTrackingClock(now func() time.Time) TrackingOption {
	return func(tm *TrackingManager) {
		if now != nil {
			tm.clock = now
		}
	}
}

// NewTrackingManager creates a new tracking manager
// 新しい追跡マネージャーを作成
func NewTrackingManager(storage Storage, logger *zap.Logger, config *Config, opts ...TrackingOption) *TrackingManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = DefaultConfig()
	}
	tm := &TrackingManager{
		storage: storage,
		logger:  logger,
		config:  config,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Tracker returns a tracking manager sharing m's storage, clock and config
// マネージャーと設定を共有する追跡マネージャーを返す
func (m *Manager) Tracker() *TrackingManager {
	return NewTrackingManager(m.storage, m.logger, m.config, WithTrackingClock(m.clock))
}

// ExpiringLots returns lots with today <= expiration <= today+withinDays.
// withinDays of zero uses the configured default.
// 指定日数以内に期限切れになるロットを取得
func (tm *TrackingManager) ExpiringLots(ctx context.Context, withinDays int) ([]StockLot, error) {
	if withinDays < 0 {
		return nil, NewValidationError("within", "日数は0以上である必要があります", fmt.Sprintf("%d", withinDays))
	}
	if withinDays == 0 {
		withinDays = tm.config.ExpiringWithinDays
	}

	today := DateOf(tm.clock())
	until := today.AddDays(withinDays)
	lots, err := tm.storage.ListLotsExpiringBetween(ctx, today, until)
	if err != nil {
		return nil, wrapStorageError("list_expiring_lots", "期限間近ロット取得に失敗しました", err)
	}

	tm.logger.Debug("期限間近ロット検索完了",
		zap.Int("within_days", withinDays),
		zap.String("until", until.String()),
		zap.Int("count", len(lots)),
	)
	return lots, nil
}

// ExpiredLots returns lots whose expiration date is before today.
// The lots are reported only; their counts are left untouched.
// 既に期限切れのロットを取得
func (tm *TrackingManager) ExpiredLots(ctx context.Context) ([]StockLot, error) {
	today := DateOf(tm.clock())
	lots, err := tm.storage.ListLotsExpiredBefore(ctx, today)
	if err != nil {
		return nil, wrapStorageError("list_expired_lots", "期限切れロット取得に失敗しました", err)
	}

	tm.logger.Debug("期限切れロット検索完了",
		zap.String("today", today.String()),
		zap.Int("count", len(lots)),
	)
	return lots, nil
}

// VerifyLot recomputes a lot's count from its initial count and entries.
// Consistent reports whether the stored count equals the recomputed one.
// Problem is set when replaying the entries in creation order takes the
// running count below zero, which can happen after legitimate edits of
// earlier entries.
// ロットの在庫数を台帳から再計算して検証
func (tm *TrackingManager) VerifyLot(ctx context.Context, lotID int64) (*LotAudit, error) {
	if err := validateID("lot_id", lotID); err != nil {
		return nil, err
	}

	lot, err := tm.storage.GetLot(ctx, lotID)
	if err != nil {
		return nil, wrapStorageError("get_lot", "ロット取得に失敗しました", err)
	}
	entries, err := tm.storage.ListEntriesByLot(ctx, lotID, 0)
	if err != nil {
		return nil, wrapStorageError("list_entries", "台帳エントリ取得に失敗しました", err)
	}

	audit := &LotAudit{
		LotID:       lot.ID,
		StoredCount: lot.Count,
		EntryCount:  len(entries),
	}

	total := lot.InitialCount
	for i := range entries {
		delta, err := entries[i].Posting().Delta()
		if err != nil {
			return nil, err
		}
		total += delta
	}
	audit.ReplayedCount = total
	audit.Consistent = total == lot.Count

	if _, err := Replay(lot.InitialCount, entries); err != nil {
		audit.Problem = err.Error()
	}
	if !audit.Consistent {
		tm.logger.Warn("ロット在庫数が台帳と一致しません",
			zap.Int64("lot_id", lot.ID),
			zap.Int64("stored_count", audit.StoredCount),
			zap.Int64("replayed_count", audit.ReplayedCount),
		)
	}
	return audit, nil
}
