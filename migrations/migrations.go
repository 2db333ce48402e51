// Package migrations holds the embedded database schema and applies it.
package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Supported SQL dialects
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

var historyTable = map[string]string{
	Postgres: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) NOT NULL UNIQUE,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			checksum VARCHAR(64) NOT NULL
		)`,
	SQLite: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL UNIQUE,
			executed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			checksum TEXT NOT NULL
		)`,
}

// Migration is one embedded schema file
type Migration struct {
	Filename string
	Checksum string
	SQL      string
}

// List returns the migrations of dialect in filename order
// 方言ごとのマイグレーションをファイル名順に返す
func List(dialect string) ([]Migration, error) {
	if _, ok := historyTable[dialect]; !ok {
		return nil, fmt.Errorf("未対応のデータベース方言です: %s", dialect)
	}

	names, err := fs.Glob(files, path.Join(dialect, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("マイグレーションファイル検索エラー: %w", err)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("ファイル読み込みエラー %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Filename: path.Base(name),
			Checksum: checksum(content),
			SQL:      string(content),
		})
	}
	return migrations, nil
}

// Apply runs every pending migration of dialect, each in its own transaction,
// and records it in schema_migrations.
// 未実行のマイグレーションを実行
func Apply(ctx context.Context, db *sqlx.DB, dialect string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	migrations, err := List(dialect)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, historyTable[dialect]); err != nil {
		return fmt.Errorf("マイグレーション履歴テーブル作成エラー: %w", err)
	}

	executed, err := executedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("実行済みマイグレーション取得エラー: %w", err)
	}

	for _, m := range migrations {
		if sum, ok := executed[m.Filename]; ok {
			if sum != m.Checksum {
				logger.Warn("実行済みマイグレーションの内容が変更されています",
					zap.String("filename", m.Filename),
					zap.String("recorded_checksum", sum),
					zap.String("checksum", m.Checksum),
				)
			}
			logger.Debug("スキップ (実行済み)", zap.String("filename", m.Filename))
			continue
		}

		if err := applyOne(ctx, db, m); err != nil {
			return err
		}
		logger.Info("マイグレーション完了", zap.String("filename", m.Filename))
	}
	return nil
}

func applyOne(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始エラー %s: %w", m.Filename, err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("マイグレーション実行エラー %s: %w", m.Filename, err)
	}

	insert := tx.Rebind("INSERT INTO schema_migrations (filename, checksum) VALUES (?, ?)")
	if _, err := tx.ExecContext(ctx, insert, m.Filename, m.Checksum); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("マイグレーション履歴記録エラー %s: %w", m.Filename, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションコミットエラー %s: %w", m.Filename, err)
	}
	return nil
}

func executedMigrations(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	var rows []struct {
		Filename string `db:"filename"`
		Checksum string `db:"checksum"`
	}
	if err := db.SelectContext(ctx, &rows, "SELECT filename, checksum FROM schema_migrations"); err != nil {
		return nil, err
	}

	executed := make(map[string]string, len(rows))
	for _, r := range rows {
		executed[r.Filename] = r.Checksum
	}
	return executed, nil
}

// checksum ファイル内容のSHA-256チェックサムを計算
func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
