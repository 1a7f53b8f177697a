package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/attempt"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/product"
	"store-server/internal/domain/provider"
	"store-server/internal/domain/settings"
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

// stubSettingsProvider フォールバック値だけを返す設定プロバイダー
type stubSettingsProvider struct{}

func (p *stubSettingsProvider) GetInt(_ context.Context, _ string, fallback int) int {
	return fallback
}

func (p *stubSettingsProvider) GuardPolicy(_ context.Context) settings.GuardPolicy {
	return settings.DefaultGuardPolicy()
}

func (p *stubSettingsProvider) Refresh() {}
