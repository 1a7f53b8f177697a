package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	activationapp "store-server/internal/application/activation"
	authapp "store-server/internal/application/auth"
	poolapp "store-server/internal/application/cdk_pool"
	adminapp "store-server/internal/application/code_admin"
	reconciliationapp "store-server/internal/application/reconciliation"
	"store-server/internal/domain/service"
	"store-server/internal/infrastructure/config"
	otelinfra "store-server/internal/infrastructure/observability/otel"
	"store-server/internal/infrastructure/persistence/mysql"
	providerinfra "store-server/internal/infrastructure/provider"
	settingsinfra "store-server/internal/infrastructure/settings"
	"store-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("store-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("store-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// リポジトリの初期化
	codeRepo := mysql.NewActivationCodeRepository(db)
	productRepo := mysql.NewProductRepository(db)
	tokenRepo := mysql.NewCDKTokenRepository(db)
	attemptRepo := mysql.NewAttemptRepository(db)
	settingsRepo := mysql.NewSettingsRepository(db)

	// 設定ストアとブルートフォースガードの初期化
	settingsProvider := settingsinfra.NewCachedProvider(settingsRepo, cfg.Settings.CacheTTL)
	guard := service.NewAbuseGuard(attemptRepo, settingsProvider)

	// 外部活性化プロバイダークライアントの初期化
	providerClient := providerinfra.NewHTTPClient(&cfg.Provider, metrics)

	// アプリケーションサービスの初期化
	activationService := activationapp.NewActivationApplicationService(
		codeRepo,
		productRepo,
		tokenRepo,
		providerClient,
		guard,
		logger,
		metrics,
		cfg.Provider.ReleaseOnSubmitFailure,
	)

	reconciliationService := reconciliationapp.NewReconciliationApplicationService(
		codeRepo,
		tokenRepo,
		providerClient,
		logger,
	)

	poolService := poolapp.NewCDKPoolApplicationService(
		tokenRepo,
		providerClient,
		logger,
		metrics,
	)

	adminService := adminapp.NewCodeAdminApplicationService(
		codeRepo,
		settingsProvider,
		logger,
	)

	authService := authapp.NewAuthApplicationService(&cfg.JWT, &cfg.Admin, logger)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		activationService,
		reconciliationService,
		poolService,
		adminService,
		authService,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// グレースフルシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
