package rest

import (
	activationapp "store-server/internal/application/activation"
	authapp "store-server/internal/application/auth"
	poolapp "store-server/internal/application/cdk_pool"
	adminapp "store-server/internal/application/code_admin"
	reconciliationapp "store-server/internal/application/reconciliation"
	"store-server/internal/infrastructure/config"
	otelinfra "store-server/internal/infrastructure/observability/otel"
	"store-server/internal/presentation/rest/handler"
	restmiddleware "store-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Router REST APIルーター
type Router struct {
	echo              *echo.Echo
	activationHandler *handler.ActivationHandler
	adminCDKHandler   *handler.AdminCDKHandler
	adminCodeHandler  *handler.AdminCodeHandler
	authHandler       *handler.AuthHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	activationService *activationapp.ActivationApplicationService,
	reconciliationService *reconciliationapp.ReconciliationApplicationService,
	poolService *poolapp.CDKPoolApplicationService,
	adminService *adminapp.CodeAdminApplicationService,
	authService *authapp.AuthApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	activationHandler := handler.NewActivationHandler(activationService, reconciliationService)
	adminCDKHandler := handler.NewAdminCDKHandler(poolService)
	adminCodeHandler := handler.NewAdminCodeHandler(adminService)
	authHandler := handler.NewAuthHandler(authService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, activationHandler, adminCDKHandler, adminCodeHandler, authHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:              e,
		activationHandler: activationHandler,
		adminCDKHandler:   adminCDKHandler,
		adminCodeHandler:  adminCodeHandler,
		authHandler:       authHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	activationHandler *handler.ActivationHandler,
	adminCDKHandler *handler.AdminCDKHandler,
	adminCodeHandler *handler.AdminCodeHandler,
	authHandler *handler.AuthHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// 公開エンドポイント（エンドユーザー向け）
	api.POST("/activate", activationHandler.Activate)
	api.GET("/activate/task/:task_id", activationHandler.TaskStatus)
	api.GET("/activate/usage/:cdk", activationHandler.Usage)
	api.POST("/auth/login", authHandler.Login)

	// 管理者エンドポイント（JWT必須）
	admin := api.Group("/admin", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	admin.POST("/cdks/import", adminCDKHandler.ImportCDKs)
	admin.GET("/cdks/stats", adminCDKHandler.CDKStats)
	admin.POST("/codes/generate", adminCodeHandler.GenerateCodes)
	admin.POST("/codes/import", adminCodeHandler.ImportCodes)
	admin.GET("/codes/export", adminCodeHandler.ExportCodes)
	admin.POST("/codes/:id/block", adminCodeHandler.BlockCode)
	admin.POST("/codes/:id/unblock", adminCodeHandler.UnblockCode)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
