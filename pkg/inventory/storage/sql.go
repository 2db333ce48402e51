package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
)

// dialect holds the few places where PostgreSQL and SQLite differ
type dialect struct {
	name string
	// forUpdate is appended to row reads that must hold a lock
	forUpdate string
	// isUniqueViolation reports whether err is a unique/primary key violation
	isUniqueViolation func(err error) bool
}

// SQLStorage implements inventory.Storage on top of sqlx
// sqlxを使用したStorageインターフェースの実装
type SQLStorage struct {
	*queries
	db     *sqlx.DB
	logger *zap.Logger
}

var (
	_ inventory.Storage = (*SQLStorage)(nil)
	_ inventory.Tx      = (*sqlTx)(nil)
)

func newSQLStorage(db *sqlx.DB, d *dialect, logger *zap.Logger) *SQLStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStorage{
		queries: &queries{ext: db, dialect: d},
		db:      db,
		logger:  logger,
	}
}

// DB returns the underlying connection pool
func (s *SQLStorage) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the SQL dialect name ("postgres" or "sqlite")
func (s *SQLStorage) Dialect() string {
	return s.dialect.name
}

// Begin starts a new database transaction
// 新しいデータベーストランザクションを開始
func (s *SQLStorage) Begin(ctx context.Context) (inventory.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	return &sqlTx{queries: &queries{ext: tx, dialect: s.dialect}, tx: tx}, nil
}

// DeleteItem removes an item, its lots and their entries in one transaction
// 商品と関連データを1トランザクションで削除
func (s *SQLStorage) DeleteItem(ctx context.Context, itemID string) error {
	return s.inTx(ctx, func(q *queries) error {
		return q.DeleteItem(ctx, itemID)
	})
}

// DeleteLot removes a lot and its entries in one transaction
// ロットと台帳エントリを1トランザクションで削除
func (s *SQLStorage) DeleteLot(ctx context.Context, lotID int64) error {
	return s.inTx(ctx, func(q *queries) error {
		return q.DeleteLot(ctx, lotID)
	})
}

func (s *SQLStorage) inTx(ctx context.Context, fn func(q *queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	if err := fn(&queries{ext: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("ロールバックに失敗しました", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションコミットに失敗しました: %w", err)
	}
	return nil
}

// Ping checks database connectivity
// データベース接続を確認
func (s *SQLStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
// データベース接続を閉じる
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// sqlTx is an inventory.Tx backed by a sqlx transaction
type sqlTx struct {
	*queries
	tx *sqlx.Tx
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// queries implements the row operations against a pool or a transaction.
// Statements are written with ? placeholders and rebound per driver.
type queries struct {
	ext     sqlx.ExtContext
	dialect *dialect
}

func (q *queries) rebind(query string) string {
	return q.ext.Rebind(query)
}

const itemColumns = `id, category, subcategory, name, brand_name, generic_name, dosage_form,
	strength_per_size, packaging, quantity, unit, created_at, updated_at`

const lotColumns = `id, item_id, delivery_date, expiration_date, count, initial_count, version,
	created_at, updated_at`

const entryColumns = `id, lot_id, user_id, quantity, type, reference, created_at, updated_at, updated_by`

// CreateItem creates a new item
// 新しい商品を作成
func (q *queries) CreateItem(ctx context.Context, item *inventory.Item) error {
	query := q.rebind(`
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := q.ext.ExecContext(ctx, query,
		item.ID,
		item.Category,
		item.Subcategory,
		item.Name,
		item.BrandName,
		item.GenericName,
		item.DosageForm,
		item.StrengthPerSize,
		item.Packaging,
		item.Quantity,
		item.Unit,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if q.dialect.isUniqueViolation(err) {
			return inventory.ErrDuplicateItem
		}
		return fmt.Errorf("商品作成に失敗しました: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID
// IDで商品を取得
func (q *queries) GetItem(ctx context.Context, itemID string) (*inventory.Item, error) {
	item := &inventory.Item{}
	err := sqlx.GetContext(ctx, q.ext, item, q.rebind(`SELECT `+itemColumns+` FROM items WHERE id = ?`), itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, fmt.Errorf("商品取得に失敗しました: %w", err)
	}
	return item, nil
}

// UpdateItem updates an existing item
// 既存の商品を更新
func (q *queries) UpdateItem(ctx context.Context, item *inventory.Item) error {
	query := q.rebind(`
		UPDATE items
		SET category = ?, subcategory = ?, name = ?, brand_name = ?, generic_name = ?,
			dosage_form = ?, strength_per_size = ?, packaging = ?, quantity = ?, unit = ?, updated_at = ?
		WHERE id = ?`)

	result, err := q.ext.ExecContext(ctx, query,
		item.Category,
		item.Subcategory,
		item.Name,
		item.BrandName,
		item.GenericName,
		item.DosageForm,
		item.StrengthPerSize,
		item.Packaging,
		item.Quantity,
		item.Unit,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("商品更新に失敗しました: %w", err)
	}
	return expectAffected(result, inventory.ErrItemNotFound)
}

// DeleteItem deletes the item's entries, then its lots, then the item
// 商品のエントリ、ロット、商品本体の順に削除
func (q *queries) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := q.ext.ExecContext(ctx, q.rebind(`
		DELETE FROM ledger_entries
		WHERE lot_id IN (SELECT id FROM stock_lots WHERE item_id = ?)`), itemID); err != nil {
		return fmt.Errorf("台帳エントリ削除に失敗しました: %w", err)
	}
	if _, err := q.ext.ExecContext(ctx, q.rebind(`DELETE FROM stock_lots WHERE item_id = ?`), itemID); err != nil {
		return fmt.Errorf("ロット削除に失敗しました: %w", err)
	}

	result, err := q.ext.ExecContext(ctx, q.rebind(`DELETE FROM items WHERE id = ?`), itemID)
	if err != nil {
		return fmt.Errorf("商品削除に失敗しました: %w", err)
	}
	return expectAffected(result, inventory.ErrItemNotFound)
}

// ListItems retrieves items ordered by name
// 商品一覧を名前順に取得
func (q *queries) ListItems(ctx context.Context, offset, limit int) ([]inventory.Item, error) {
	items := []inventory.Item{}
	query := q.rebind(`SELECT ` + itemColumns + ` FROM items ORDER BY name, id LIMIT ? OFFSET ?`)
	if err := sqlx.SelectContext(ctx, q.ext, &items, query, limit, offset); err != nil {
		return nil, fmt.Errorf("商品一覧取得に失敗しました: %w", err)
	}
	return items, nil
}

// SearchItems finds items whose name, brand name or generic name contains query
// 商品名・ブランド名・一般名で部分一致検索
func (q *queries) SearchItems(ctx context.Context, query string) ([]inventory.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	stmt := q.rebind(`
		SELECT ` + itemColumns + ` FROM items
		WHERE LOWER(name) LIKE ? ESCAPE '\'
			OR LOWER(brand_name) LIKE ? ESCAPE '\'
			OR LOWER(generic_name) LIKE ? ESCAPE '\'
		ORDER BY name, id
		LIMIT 100`)

	items := []inventory.Item{}
	if err := sqlx.SelectContext(ctx, q.ext, &items, stmt, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("商品検索に失敗しました: %w", err)
	}
	return items, nil
}

// CreateLot inserts a lot and sets lot.ID from the store
// 新しいロットを作成
func (q *queries) CreateLot(ctx context.Context, lot *inventory.StockLot) error {
	query := q.rebind(`
		INSERT INTO stock_lots (item_id, delivery_date, expiration_date, count, initial_count, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := q.ext.QueryRowxContext(ctx, query,
		lot.ItemID,
		lot.DeliveryDate,
		lot.ExpirationDate,
		lot.Count,
		lot.InitialCount,
		lot.Version,
		lot.CreatedAt,
		lot.UpdatedAt,
	).Scan(&lot.ID)
	if err != nil {
		if q.dialect.isUniqueViolation(err) {
			return &inventory.DuplicateLotError{ItemID: lot.ItemID, ExpirationDate: lot.ExpirationDate}
		}
		return fmt.Errorf("ロット作成に失敗しました: %w", err)
	}
	return nil
}

// GetLot retrieves a lot by ID
// IDでロットを取得
func (q *queries) GetLot(ctx context.Context, lotID int64) (*inventory.StockLot, error) {
	return q.getLot(ctx, lotID, "")
}

// LockLot retrieves a lot and locks its row for the rest of the transaction
// ロットを取得し、トランザクション終了まで行ロックを保持
func (q *queries) LockLot(ctx context.Context, lotID int64) (*inventory.StockLot, error) {
	return q.getLot(ctx, lotID, q.dialect.forUpdate)
}

func (q *queries) getLot(ctx context.Context, lotID int64, suffix string) (*inventory.StockLot, error) {
	lot := &inventory.StockLot{}
	query := q.rebind(`SELECT ` + lotColumns + ` FROM stock_lots WHERE id = ?` + suffix)
	if err := sqlx.GetContext(ctx, q.ext, lot, query, lotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrLotNotFound
		}
		return nil, fmt.Errorf("ロット取得に失敗しました: %w", err)
	}
	return lot, nil
}

// UpdateLot updates a lot if its stored version is lot.Version-1
// 楽観的ロック付きでロットを更新
func (q *queries) UpdateLot(ctx context.Context, lot *inventory.StockLot) error {
	query := q.rebind(`
		UPDATE stock_lots
		SET delivery_date = ?, expiration_date = ?, count = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`)

	result, err := q.ext.ExecContext(ctx, query,
		lot.DeliveryDate,
		lot.ExpirationDate,
		lot.Count,
		lot.Version,
		lot.UpdatedAt,
		lot.ID,
		lot.Version-1, // 楽観的ロックのための前バージョン
	)
	if err != nil {
		if q.dialect.isUniqueViolation(err) {
			return &inventory.DuplicateLotError{ItemID: lot.ItemID, ExpirationDate: lot.ExpirationDate}
		}
		return fmt.Errorf("ロット更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新行数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := q.GetLot(ctx, lot.ID); err != nil {
			return err
		}
		return inventory.ErrVersionMismatch
	}
	return nil
}

// DeleteLot deletes the lot's entries, then the lot
// ロットの台帳エントリとロットを削除
func (q *queries) DeleteLot(ctx context.Context, lotID int64) error {
	if _, err := q.ext.ExecContext(ctx, q.rebind(`DELETE FROM ledger_entries WHERE lot_id = ?`), lotID); err != nil {
		return fmt.Errorf("台帳エントリ削除に失敗しました: %w", err)
	}

	result, err := q.ext.ExecContext(ctx, q.rebind(`DELETE FROM stock_lots WHERE id = ?`), lotID)
	if err != nil {
		return fmt.Errorf("ロット削除に失敗しました: %w", err)
	}
	return expectAffected(result, inventory.ErrLotNotFound)
}

// ListLotsByItem retrieves the item's lots ordered by expiration date
// 商品のロットを有効期限順に取得
func (q *queries) ListLotsByItem(ctx context.Context, itemID string) ([]inventory.StockLot, error) {
	return q.selectLots(ctx, `WHERE item_id = ?`, itemID)
}

// ListLotsExpiringBetween retrieves lots with from <= expiration_date <= to
// 指定期間内に期限切れになるロットを取得
func (q *queries) ListLotsExpiringBetween(ctx context.Context, from, to inventory.Date) ([]inventory.StockLot, error) {
	return q.selectLots(ctx, `WHERE expiration_date >= ? AND expiration_date <= ?`, from, to)
}

// ListLotsExpiredBefore retrieves lots with expiration_date < day
// 期限切れのロットを取得
func (q *queries) ListLotsExpiredBefore(ctx context.Context, day inventory.Date) ([]inventory.StockLot, error) {
	return q.selectLots(ctx, `WHERE expiration_date < ?`, day)
}

func (q *queries) selectLots(ctx context.Context, where string, args ...interface{}) ([]inventory.StockLot, error) {
	lots := []inventory.StockLot{}
	query := q.rebind(`SELECT ` + lotColumns + ` FROM stock_lots ` + where + ` ORDER BY expiration_date, id`)
	if err := sqlx.SelectContext(ctx, q.ext, &lots, query, args...); err != nil {
		return nil, fmt.Errorf("ロット一覧取得に失敗しました: %w", err)
	}
	return lots, nil
}

// CreateEntry inserts a ledger entry and sets entry.ID from the store
// 新しい台帳エントリを作成
func (q *queries) CreateEntry(ctx context.Context, entry *inventory.LedgerEntry) error {
	query := q.rebind(`
		INSERT INTO ledger_entries (lot_id, user_id, quantity, type, reference, created_at, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := q.ext.QueryRowxContext(ctx, query,
		entry.LotID,
		entry.UserID,
		entry.Quantity,
		entry.Type,
		entry.Reference,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.UpdatedBy,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("台帳エントリ作成に失敗しました: %w", err)
	}
	return nil
}

// GetEntry retrieves a ledger entry by ID
// IDで台帳エントリを取得
func (q *queries) GetEntry(ctx context.Context, entryID int64) (*inventory.LedgerEntry, error) {
	entry := &inventory.LedgerEntry{}
	query := q.rebind(`SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = ?`)
	if err := sqlx.GetContext(ctx, q.ext, entry, query, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrEntryNotFound
		}
		return nil, fmt.Errorf("台帳エントリ取得に失敗しました: %w", err)
	}
	return entry, nil
}

// UpdateEntry updates an entry's type, quantity and audit columns
// 台帳エントリを更新
func (q *queries) UpdateEntry(ctx context.Context, entry *inventory.LedgerEntry) error {
	query := q.rebind(`
		UPDATE ledger_entries
		SET quantity = ?, type = ?, reference = ?, updated_at = ?, updated_by = ?
		WHERE id = ?`)

	result, err := q.ext.ExecContext(ctx, query,
		entry.Quantity,
		entry.Type,
		entry.Reference,
		entry.UpdatedAt,
		entry.UpdatedBy,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("台帳エントリ更新に失敗しました: %w", err)
	}
	return expectAffected(result, inventory.ErrEntryNotFound)
}

// DeleteEntry deletes a ledger entry
// 台帳エントリを削除
func (q *queries) DeleteEntry(ctx context.Context, entryID int64) error {
	result, err := q.ext.ExecContext(ctx, q.rebind(`DELETE FROM ledger_entries WHERE id = ?`), entryID)
	if err != nil {
		return fmt.Errorf("台帳エントリ削除に失敗しました: %w", err)
	}
	return expectAffected(result, inventory.ErrEntryNotFound)
}

// ListEntriesByLot retrieves a lot's entries oldest first; limit <= 0 returns all
// ロットの台帳エントリを古い順に取得
func (q *queries) ListEntriesByLot(ctx context.Context, lotID int64, limit int) ([]inventory.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE lot_id = ? ORDER BY id`
	args := []interface{}{lotID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	entries := []inventory.LedgerEntry{}
	if err := sqlx.SelectContext(ctx, q.ext, &entries, q.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("台帳エントリ一覧取得に失敗しました: %w", err)
	}
	return entries, nil
}

// expectAffected returns notFound when result touched no rows
func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新行数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Open opens the storage for driver ("postgres" or "sqlite"). source is a
// lib/pq DSN or a SQLite file path.
// ドライバー名でストレージを開く
func Open(driver, source string, logger *zap.Logger) (*SQLStorage, error) {
	switch driver {
	case postgresDialect.name:
		return NewPostgreSQLStorage(source, logger)
	case sqliteDialect.name:
		return NewSQLiteStorage(source, logger)
	default:
		return nil, fmt.Errorf("未対応のデータベースドライバーです: %s", driver)
	}
}
