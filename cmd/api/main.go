package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiMedLedger/internal/config"
	"github.com/nemonet1337/zaiMedLedger/internal/logging"
	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
	"github.com/nemonet1337/zaiMedLedger/pkg/inventory/storage"
)

// userHeader carries the acting user's ID
const userHeader = "X-User-ID"

func main() {
	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("設定読み込みに失敗しました:", err)
	}

	// ログ設定
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("ログ初期化に失敗しました:", err)
	}
	defer logger.Sync()

	// データベース接続
	store, err := storage.Open(cfg.Database.Driver, cfg.DataSource(), logger)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer store.Close()

	// メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := inventory.NewMetrics(registry)
	if err != nil {
		logger.Fatal("メトリクス登録に失敗しました", zap.Error(err))
	}

	// 在庫マネージャー初期化
	manager := inventory.NewManager(
		store,
		inventory.NewLogPublisher(logger),
		logger,
		cfg.ManagerConfig(),
		inventory.WithMetrics(metrics),
	)

	// HTTPハンドラー設定
	handlers := NewHandlers(manager, manager.Tracker(), func(r *http.Request) error {
		return store.Ping(r.Context())
	}, logger)

	var metricsHandler http.Handler
	if cfg.API.EnableMetrics {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	router := setupRouter(handlers, metricsHandler, logger)

	var handler http.Handler = router
	if cfg.API.EnableCORS {
		handler = cors.Handler(cors.Options{
			AllowedOrigins: cfg.API.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", userHeader},
			MaxAge:         300,
		})(router)
	}

	// HTTPサーバー設定
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      handler,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	// グレースフルシャットダウン設定
	go func() {
		logger.Info("医薬品在庫台帳APIサーバーを開始します",
			zap.Int("port", cfg.API.Port),
			zap.String("driver", cfg.Database.Driver),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー開始に失敗しました", zap.Error(err))
		}
	}()

	// シャットダウンシグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// グレースフルシャットダウン
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンに失敗しました", zap.Error(err))
	}

	logger.Info("サーバーが正常に停止しました")
}

// setupRouter sets up HTTP routes
// HTTPルートを設定
func setupRouter(handlers *Handlers, metricsHandler http.Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// ヘルスチェック
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// API v1ルート
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(userMiddleware)

	// カタログ
	api.HandleFunc("/catalog", handlers.GetCatalog).Methods("GET")

	// 商品管理
	api.HandleFunc("/items", handlers.CreateItem).Methods("POST")
	api.HandleFunc("/items", handlers.ListItems).Methods("GET")
	api.HandleFunc("/items/search", handlers.SearchItems).Methods("GET")
	api.HandleFunc("/items/{itemId}", handlers.GetItem).Methods("GET")
	api.HandleFunc("/items/{itemId}", handlers.UpdateItem).Methods("PUT")
	api.HandleFunc("/items/{itemId}", handlers.DeleteItem).Methods("DELETE")

	// ロット管理
	api.HandleFunc("/items/{itemId}/lots", handlers.CreateLot).Methods("POST")
	api.HandleFunc("/items/{itemId}/lots", handlers.ListLotsByItem).Methods("GET")
	api.HandleFunc("/lots/expiring", handlers.GetExpiringLots).Methods("GET")
	api.HandleFunc("/lots/expired", handlers.GetExpiredLots).Methods("GET")
	api.HandleFunc("/lots/{lotId:[0-9]+}", handlers.GetLot).Methods("GET")
	api.HandleFunc("/lots/{lotId:[0-9]+}", handlers.UpdateLot).Methods("PUT")
	api.HandleFunc("/lots/{lotId:[0-9]+}", handlers.DeleteLot).Methods("DELETE")
	api.HandleFunc("/lots/{lotId:[0-9]+}/audit", handlers.AuditLot).Methods("GET")

	// 台帳エントリ
	api.HandleFunc("/lots/{lotId:[0-9]+}/entries", handlers.CreateEntry).Methods("POST")
	api.HandleFunc("/lots/{lotId:[0-9]+}/entries", handlers.ListEntries).Methods("GET")
	api.HandleFunc("/entries/{entryId:[0-9]+}", handlers.GetEntry).Methods("GET")
	api.HandleFunc("/entries/{entryId:[0-9]+}", handlers.UpdateEntry).Methods("PUT")
	api.HandleFunc("/entries/{entryId:[0-9]+}", handlers.DeleteEntry).Methods("DELETE")

	// ログ機能
	router.Use(loggingMiddleware(logger))

	return router
}

// userMiddleware puts the X-User-ID header into the request context
// X-User-IDヘッダーをコンテキストに設定するミドルウェア
func userMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(userHeader); userID != "" {
			r = r.WithContext(inventory.WithUser(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
// HTTPリクエストをログ出力するミドルウェア
func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// リクエスト処理
			next.ServeHTTP(rec, r)

			// ログ出力
			logger.Info("HTTPリクエスト",
				zap.String("method", r.Method),
				zap.String("url", r.URL.Path),
				zap.Int("status", rec.status),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
