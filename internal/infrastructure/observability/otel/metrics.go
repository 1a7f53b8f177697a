package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 活性化数
	ActivationCount metric.Int64Counter

	// ブルートフォースブロック数
	GuardBlockCount metric.Int64Counter

	// CDKトークン割り当て数
	TokenAllocationCount metric.Int64Counter

	// CDKプール残量
	TokenPoolSize metric.Int64Gauge

	// プロバイダーAPIのレスポンス時間
	ProviderLatency metric.Float64Histogram

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	activationCount, err := meter.Int64Counter(
		"activations_total",
		metric.WithDescription("Total number of code activations"),
	)
	if err != nil {
		return nil, err
	}

	guardBlockCount, err := meter.Int64Counter(
		"guard_blocks_total",
		metric.WithDescription("Total number of IP blocks issued by the abuse guard"),
	)
	if err != nil {
		return nil, err
	}

	tokenAllocationCount, err := meter.Int64Counter(
		"token_allocations_total",
		metric.WithDescription("Total number of CDK token allocations"),
	)
	if err != nil {
		return nil, err
	}

	tokenPoolSize, err := meter.Int64Gauge(
		"token_pool_size",
		metric.WithDescription("Number of available CDK tokens in the pool"),
	)
	if err != nil {
		return nil, err
	}

	providerLatency, err := meter.Float64Histogram(
		"provider_request_seconds",
		metric.WithDescription("Provider API request time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ActivationCount:      activationCount,
		GuardBlockCount:      guardBlockCount,
		TokenAllocationCount: tokenAllocationCount,
		TokenPoolSize:        tokenPoolSize,
		ProviderLatency:      providerLatency,
		RequestCount:         requestCount,
		ResponseTime:         responseTime,
		ErrorCount:           errorCount,
	}, nil
}

// RecordActivation 活性化を記録
func (m *Metrics) RecordActivation(ctx context.Context, codeType, result string) {
	m.ActivationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("code_type", codeType),
			attribute.String("result", result),
		),
	)
}

// RecordGuardBlock IPブロックの発行を記録
func (m *Metrics) RecordGuardBlock(ctx context.Context, ipAddress string) {
	m.GuardBlockCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("ip_address", ipAddress),
		),
	)
}

// RecordTokenAllocation CDKトークンの割り当てを記録
func (m *Metrics) RecordTokenAllocation(ctx context.Context, gptType string) {
	m.TokenAllocationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("gpt_type", gptType),
		),
	)
}

// RecordTokenPoolSize CDKプール残量を記録
func (m *Metrics) RecordTokenPoolSize(ctx context.Context, gptType string, size int64) {
	m.TokenPoolSize.Record(ctx, size,
		metric.WithAttributes(
			attribute.String("gpt_type", gptType),
		),
	)
}

// RecordProviderLatency プロバイダーAPIのレスポンス時間を記録
func (m *Metrics) RecordProviderLatency(ctx context.Context, operation string, duration float64) {
	m.ProviderLatency.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
