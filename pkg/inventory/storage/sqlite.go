package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nemonet1337/zaiMedLedger/migrations"
)

func init() {
	sqlx.BindDriver(migrations.SQLite, sqlx.QUESTION)
}

var sqliteDialect = &dialect{
	name: migrations.SQLite,
	// SQLite has no row locks; the single connection serialises writers.
	forUpdate: "",
	isUniqueViolation: func(err error) bool {
		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) {
			return false
		}
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// 拡張エラーコードが無効な接続
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		default:
			return false
		}
	},
}

// NewSQLiteStorage opens (creating if needed) the SQLite database at path and
// applies the embedded schema. The pool holds one connection, so every
// transaction runs alone.
// 新しいSQLiteストレージインスタンスを作成
func NewSQLiteStorage(path string, logger *zap.Logger) (*SQLStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Connect(migrations.SQLite, path)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("SQLite設定に失敗しました (%s): %w", pragma, err)
		}
	}

	if err := migrations.Apply(ctx, db, migrations.SQLite, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗しました: %w", err)
	}

	return newSQLStorage(db, sqliteDialect, logger), nil
}
