package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-lodging-reservation/internal/api"
	"github.com/sanosuguru/go-lodging-reservation/internal/api/handler"
	"github.com/sanosuguru/go-lodging-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-lodging-reservation/internal/application"
	"github.com/sanosuguru/go-lodging-reservation/internal/config"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-lodging-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-lodging-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-lodging-reservation/internal/worker"
)

func main() {
	// .env はローカル開発用。なければ環境変数のみ使う
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	txManager := postgres.NewTxManager(db)
	lodgingRepo := postgres.NewLodgingRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)

	healthChecks := map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	// Redis（任意）。使えない場合は行ロックと排他制約のみで動く
	var (
		catalog     lodging.Catalog
		invalidator application.CatalogInvalidator
		lockManager redisinfra.LockManagerInterface
	)
	if cfg.Redis.Enabled {
		rc, err := redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redisに接続できないため分散ロックとキャッシュを無効にします", zap.Error(err))
		} else {
			defer rc.Close()
			cache := redisinfra.NewLodgingCache(rc, lodgingRepo, cfg.Booking.LodgingCacheTTL)
			catalog = cache
			invalidator = cache
			lockManager = redisinfra.NewLockManager(rc, m)
			healthChecks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) }
		}
	}

	// 予約イベントの送信先
	var notifier application.Notifier = application.LogNotifier{}
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			logger.Warn("RabbitMQに接続できないためイベントはログ出力のみになります", zap.Error(err))
		} else {
			defer publisher.Close()
			notifier = publisher
		}
	}

	opts := []application.Option{
		application.WithMetrics(m),
		application.WithNotifier(notifier),
		application.WithBookingPolicy(application.BookingPolicy{
			RequireHostApproval: cfg.Booking.RequireHostApproval,
			LockTTL:             cfg.Booking.LockTTL,
			LockRetries:         cfg.Booking.LockRetries,
			LockRetryDelay:      cfg.Booking.LockRetryDelay,
			SweepBatchSize:      cfg.Worker.CompletionSweepBatch,
		}),
	}

	reservationService := application.NewReservationService(txManager, reservationRepo, lodgingRepo, catalog, lockManager, opts...)
	lodgingService := application.NewLodgingService(txManager, lodgingRepo, reservationRepo, invalidator, opts...)
	reviewService := application.NewReviewService(reservationRepo, reviewRepo, opts...)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.RegisterRoutes(e, handler.Handlers{
		Health:      handler.NewHealthHandler(healthChecks),
		Lodging:     handler.NewLodgingHandler(lodgingService, reservationService.Availability()),
		Reservation: handler.NewReservationHandler(reservationService),
		Review:      handler.NewReviewHandler(reviewService),
	})

	// 完了スイーパー
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	sweeper := worker.NewCompletionSweeper(reservationService, cfg.Worker.CompletionSweepInterval)
	go sweeper.Start(ctx)

	// サーバー起動
	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

