package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	activationapp "store-server/internal/application/activation"
	authapp "store-server/internal/application/auth"
	poolapp "store-server/internal/application/cdk_pool"
	adminapp "store-server/internal/application/code_admin"
	reconciliationapp "store-server/internal/application/reconciliation"
	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/attempt"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/product"
	"store-server/internal/domain/provider"
	"store-server/internal/domain/service"
	"store-server/internal/domain/settings"
	"store-server/internal/infrastructure/config"
	otelinfra "store-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// MockActivationCodeRepository モック活性化コードリポジトリ
type MockActivationCodeRepository struct {
	mock.Mock
}

func (m *MockActivationCodeRepository) FindByCode(ctx context.Context, code string) (*activation_code.ActivationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activation_code.ActivationCode), args.Error(1)
}

func (m *MockActivationCodeRepository) FindByID(ctx context.Context, id string) (*activation_code.ActivationCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activation_code.ActivationCode), args.Error(1)
}

func (m *MockActivationCodeRepository) FindByTaskID(ctx context.Context, taskID string) (*activation_code.ActivationCode, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activation_code.ActivationCode), args.Error(1)
}

func (m *MockActivationCodeRepository) FindAll(ctx context.Context, productID, status string, limit, offset int) ([]*activation_code.ActivationCode, int, error) {
	args := m.Called(ctx, productID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*activation_code.ActivationCode), args.Int(1), args.Error(2)
}

func (m *MockActivationCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivationCodeRepository) Create(ctx context.Context, code *activation_code.ActivationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockActivationCodeRepository) Update(ctx context.Context, code *activation_code.ActivationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockActivationCodeRepository) CommitRedemption(ctx context.Context, code *activation_code.ActivationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockActivationCodeRepository) SaveLog(ctx context.Context, log *activation_code.ActivationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// MockProductRepository モック商品リポジトリ
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

// MockTokenRepository モックCDKトークンリポジトリ
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Allocate(ctx context.Context, gptType, orderCode string) (*cdk.Token, error) {
	args := m.Called(ctx, gptType, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cdk.Token), args.Error(1)
}

func (m *MockTokenRepository) FindByCDK(ctx context.Context, cdkCode string) (*cdk.Token, error) {
	args := m.Called(ctx, cdkCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cdk.Token), args.Error(1)
}

func (m *MockTokenRepository) Save(ctx context.Context, token *cdk.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Create(ctx context.Context, token *cdk.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) CountAvailable(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockProviderClient モックプロバイダークライアント
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) CheckCDK(ctx context.Context, code string) (*provider.CheckResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckResult), args.Error(1)
}

func (m *MockProviderClient) Outstock(ctx context.Context, cdkCode, userToken string) (string, error) {
	args := m.Called(ctx, cdkCode, userToken)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) TaskStatus(ctx context.Context, taskID string) (*provider.TaskStatusResult, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TaskStatusResult), args.Error(1)
}

func (m *MockProviderClient) CheckUsage(ctx context.Context, code string) (*provider.UsageResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.UsageResult), args.Error(1)
}

// MockAttemptRepository モック試行記録リポジトリ
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) FindLatestLive(ctx context.Context, ip string, windowStart time.Time) (*attempt.Attempt, error) {
	args := m.Called(ctx, ip, windowStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attempt.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) CountFailures(ctx context.Context, ip string, windowStart time.Time) (int, error) {
	args := m.Called(ctx, ip, windowStart)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) BlockIP(ctx context.Context, ip string, blockedUntil time.Time) error {
	args := m.Called(ctx, ip, blockedUntil)
	return args.Error(0)
}

func (m *MockAttemptRepository) Save(ctx context.Context, a *attempt.Attempt) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// stubSettingsProvider 既定のガードポリシーを返すスタブ
type stubSettingsProvider struct{}

func (s *stubSettingsProvider) GetInt(ctx context.Context, key string, fallback int) int {
	return fallback
}

func (s *stubSettingsProvider) GuardPolicy(ctx context.Context) settings.GuardPolicy {
	return settings.DefaultGuardPolicy()
}

func (s *stubSettingsProvider) Refresh() {}

// setupTestRouter テスト用のルーターをセットアップ
func setupTestRouter(t *testing.T) (*Router, *MockActivationCodeRepository, *MockTokenRepository, *MockAttemptRepository) {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key-for-testing-purposes-only",
			Expiration: 24 * time.Hour,
			Issuer:     "test-issuer",
		},
		Admin: config.AdminConfig{
			Username: "admin",
			// SHA-256("correct-password")
			PasswordHash: "9246aa9be8de7b40d64eb664986430793b6cc13a19d2a456981e44f28303f9cf",
		},
	}

	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	mockCodeRepo := new(MockActivationCodeRepository)
	mockProductRepo := new(MockProductRepository)
	mockTokenRepo := new(MockTokenRepository)
	mockClient := new(MockProviderClient)
	mockAttemptRepo := new(MockAttemptRepository)
	settingsProvider := &stubSettingsProvider{}

	guard := service.NewAbuseGuard(mockAttemptRepo, settingsProvider)

	activationService := activationapp.NewActivationApplicationService(
		mockCodeRepo,
		mockProductRepo,
		mockTokenRepo,
		mockClient,
		guard,
		logger,
		metrics,
		false,
	)
	reconciliationService := reconciliationapp.NewReconciliationApplicationService(
		mockCodeRepo,
		mockTokenRepo,
		mockClient,
		logger,
	)
	poolService := poolapp.NewCDKPoolApplicationService(mockTokenRepo, mockClient, logger, metrics)
	adminService := adminapp.NewCodeAdminApplicationService(mockCodeRepo, settingsProvider, logger)
	authService := authapp.NewAuthApplicationService(&cfg.JWT, &cfg.Admin, logger)

	router, err := NewRouter(
		cfg,
		logger,
		metrics,
		activationService,
		reconciliationService,
		poolService,
		adminService,
		authService,
	)
	require.NoError(t, err)
	require.NotNil(t, router)

	return router, mockCodeRepo, mockTokenRepo, mockAttemptRepo
}

// adminLogin テスト用に管理者トークンを取得
func adminLogin(t *testing.T, router *Router) string {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"username": "admin",
		"password": "correct-password",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	router.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response["token"].(string)
}

func TestNewRouter(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	assert.NotNil(t, router)
	assert.NotNil(t, router.echo)
	assert.NotNil(t, router.activationHandler)
	assert.NotNil(t, router.adminCDKHandler)
	assert.NotNil(t, router.adminCodeHandler)
	assert.NotNil(t, router.authHandler)
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestRouter_LoginEndpoint(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
	}{
		{
			name: "正常系: ログイン成功",
			requestBody: map[string]interface{}{
				"username": "admin",
				"password": "correct-password",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "異常系: パスワード不一致",
			requestBody: map[string]interface{}{
				"username": "admin",
				"password": "wrong",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: リクエストボディが空",
			requestBody:    nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.requestBody != nil {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			router.echo.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				err := json.Unmarshal(rec.Body.Bytes(), &response)
				require.NoError(t, err)
				assert.NotEmpty(t, response["token"])
			}
		})
	}
}

func TestRouter_ActivateEndpoint(t *testing.T) {
	router, mockCodeRepo, _, mockAttemptRepo := setupTestRouter(t)

	mockAttemptRepo.On("FindLatestLive", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	mockAttemptRepo.On("CountFailures", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockAttemptRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockCodeRepo.On("FindByCode", mock.Anything, "UNKNOWN").Return(nil, activation_code.ErrCodeNotFound)

	body, _ := json.Marshal(map[string]interface{}{"code": "unknown"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activate", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	router.echo.ServeHTTP(rec, req)

	// 業務エラーはHTTP 200でsuccess=falseとして返る
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.NotEmpty(t, response["error"])
}

func TestRouter_AdminEndpointsRequireAuth(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	tests := []struct {
		name   string
		path   string
		method string
	}{
		{name: "CDK取り込み", path: "/api/v1/admin/cdks/import", method: http.MethodPost},
		{name: "在庫統計", path: "/api/v1/admin/cdks/stats", method: http.MethodGet},
		{name: "コード生成", path: "/api/v1/admin/codes/generate", method: http.MethodPost},
		{name: "コード取り込み", path: "/api/v1/admin/codes/import", method: http.MethodPost},
		{name: "コード出力", path: "/api/v1/admin/codes/export", method: http.MethodGet},
		{name: "コードブロック", path: "/api/v1/admin/codes/code-1/block", method: http.MethodPost},
		{name: "ブロック解除", path: "/api/v1/admin/codes/code-1/unblock", method: http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			router.echo.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_AdminEndpointsWithToken(t *testing.T) {
	router, _, mockTokenRepo, _ := setupTestRouter(t)

	token := adminLogin(t, router)

	mockTokenRepo.On("CountAvailable", mock.Anything).Return(map[string]int{"plus_1m": 5}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cdks/stats", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()

	router.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	available := response["available"].(map[string]interface{})
	assert.Equal(t, float64(5), available["plus_1m"])
}

func TestRouter_SwaggerEndpoints(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "ReDocエンドポイント",
			path:           "/redoc",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "OpenAPI仕様エンドポイント",
			path:           "/openapi.yaml",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			router.echo.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, "path: %s", tt.path)
		})
	}
}

func TestRouter_StartShutdown(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	// Startは実際にサーバーを起動するため、テストではエラーが発生しないことを確認するだけ
	// 実際の起動は別のゴルーチンで行う
	go func() {
		err := router.Start(":0") // 利用可能なポートを使用
		// サーバーが起動中にエラーが発生する可能性があるが、それは正常
		_ = err
	}()

	// 少し待機してからシャットダウン
	time.Sleep(100 * time.Millisecond)

	err := router.Shutdown()
	assert.NoError(t, err)
}

func TestRouter_RouteRegistration(t *testing.T) {
	router, _, _, _ := setupTestRouter(t)

	routes := router.echo.Routes()

	foundEndpoints := make(map[string]bool)
	for _, route := range routes {
		foundEndpoints[route.Method+" "+route.Path] = true
	}

	endpoints := []string{
		"GET /health",
		"POST /api/v1/activate",
		"GET /api/v1/activate/task/:task_id",
		"GET /api/v1/activate/usage/:cdk",
		"POST /api/v1/auth/login",
		"POST /api/v1/admin/cdks/import",
		"GET /api/v1/admin/cdks/stats",
		"POST /api/v1/admin/codes/generate",
		"POST /api/v1/admin/codes/import",
		"GET /api/v1/admin/codes/export",
		"POST /api/v1/admin/codes/:id/block",
		"POST /api/v1/admin/codes/:id/unblock",
	}

	for _, endpoint := range endpoints {
		assert.True(t, foundEndpoints[endpoint], "エンドポイント %s が登録されていることを確認", endpoint)
	}
}
