package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nemonet1337/zaiMedLedger/internal/config"
	"github.com/nemonet1337/zaiMedLedger/internal/logging"
	"github.com/nemonet1337/zaiMedLedger/migrations"
)

func main() {
	log.Println("zaiMedLedger マイグレーション実行ツール")

	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("設定読み込みに失敗しました:", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("ログ初期化に失敗しました:", err)
	}
	defer logger.Sync()

	// 一覧表示のみ
	if len(os.Args) > 1 && os.Args[1] == "list" {
		list, err := migrations.List(cfg.Database.Driver)
		if err != nil {
			logger.Fatal("マイグレーション一覧取得に失敗しました", zap.Error(err))
		}
		for _, m := range list {
			log.Printf("%s  %s", m.Checksum[:12], m.Filename)
		}
		return
	}

	// データベース接続
	logger.Info("データベースに接続中",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.DataSource())
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	logger.Info("データベース接続が確立されました")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// マイグレーション実行
	if err := migrations.Apply(ctx, db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("マイグレーション実行に失敗しました", zap.Error(err))
	}

	logger.Info("すべてのマイグレーションが完了しました")
}
