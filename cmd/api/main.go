package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/api"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-stadium-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/config"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/gateway"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/queue"
	redisinfra "github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	logger.Set(logger.NewLogger(cfg.Server.Env))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL 接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis 接続
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Redis接続に失敗しました", zap.Error(err))
	}
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	seatCache := redisinfra.NewSeatCache(redisClient)

	// イベントパブリッシャー（到達不能でも起動は継続する）
	var publisher queue.EventPublisher
	if p, err := queue.NewPublisher(cfg.Queue.AMQPURL); err != nil {
		logger.Warn("メッセージキュー接続に失敗しました。イベント発行なしで継続します", zap.Error(err))
	} else {
		publisher = p
		defer p.Close()
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	holdRepo := postgres.NewHoldRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	stadiumRepo := postgres.NewStadiumRepository(db)

	// サービス
	verifier := gateway.NewHMACVerifier(cfg.Payment.SignatureSecret)
	holdService := application.NewHoldService(txManager, inventoryRepo, holdRepo, eventRepo, lockManager, seatCache, m)
	bookingService := application.NewBookingService(txManager, bookingRepo, holdRepo, inventoryRepo, paymentRepo, seatCache, publisher, m)
	paymentService := application.NewPaymentService(txManager, bookingRepo, paymentRepo, verifier, publisher, m)
	inventoryService := application.NewInventoryService(inventoryRepo, eventRepo, stadiumRepo, seatCache)
	eventService := application.NewEventService(eventRepo, stadiumRepo)

	// 期限切れホールドスイーパー
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := worker.NewExpiredHoldSweeper(holdService, cfg.Sweeper.Interval)
	go sweeper.Start(sweeperCtx)

	// Echo サーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))
	e.Use(apimiddleware.Identity(cfg.Auth.JWTSecret))

	// ハンドラー
	healthHandler := handler.NewHealthHandler(db)
	holdHandler := handler.NewHoldHandler(holdService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	seatHandler := handler.NewSeatHandler(inventoryService)
	eventHandler := handler.NewEventHandler(eventService)

	// ルーティング
	e.GET("/health", healthHandler.Check)
	e.GET("/ready", healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsTokenAuth(cfg.Auth.MetricsToken))

	v1 := e.Group("/api/v1")

	v1.POST("/stadiums", eventHandler.CreateStadium)
	v1.GET("/stadiums/:id", eventHandler.GetStadium)

	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)

	v1.POST("/events/:event_id/seats/initialize", seatHandler.Initialize)
	v1.GET("/events/:event_id/seats", seatHandler.GetAvailable)
	v1.POST("/events/:event_id/seats/check", seatHandler.CheckAvailability)
	v1.GET("/events/:event_id/seats/count", seatHandler.CountAvailable)

	v1.POST("/holds", holdHandler.Create)
	v1.DELETE("/holds/:id", holdHandler.Release)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetUserBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	v1.POST("/bookings/:id/payment", paymentHandler.Confirm)

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバーを起動します", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// スイーパーを先に止めてからHTTPを閉じる
	stopSweeper()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
