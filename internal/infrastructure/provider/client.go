package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/provider"
	"store-server/internal/infrastructure/config"
	otelinfra "store-server/internal/infrastructure/observability/otel"
)

// HTTPClient HTTP実装のprovider.Client
type HTTPClient struct {
	baseURL    string
	productID  string
	httpClient *http.Client
	tracer     trace.Tracer
	metrics    *otelinfra.Metrics
}

// NewHTTPClient 新しいHTTPClientを作成
func NewHTTPClient(cfg *config.ProviderConfig, metrics *otelinfra.Metrics) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		productID: cfg.ProductID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tracer:  otel.Tracer("provider-client"),
		metrics: metrics,
	}
}

// CheckCDK CDKの有効性をチェック
func (c *HTTPClient) CheckCDK(ctx context.Context, code string) (*provider.CheckResult, error) {
	ctx, span := c.tracer.Start(ctx, "ProviderClient.CheckCDK")
	defer span.End()

	span.SetAttributes(attribute.String("provider.operation", "check"))

	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cdks/public/check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Product-ID", c.productID)

	respBody, err := c.do(span, "check", req)
	if err != nil {
		return nil, err
	}

	var result provider.CheckResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: invalid check response", provider.ErrRequestFailed)
	}

	span.SetAttributes(attribute.Bool("provider.used", result.Used))
	span.SetStatus(otelcodes.Ok, "cdk checked")
	return &result, nil
}

// Outstock 活性化タスクを開始してタスクIDを返す
// 応答ボディはJSONではなくタスクIDのプレーンテキスト
func (c *HTTPClient) Outstock(ctx context.Context, cdkCode, userToken string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ProviderClient.Outstock")
	defer span.End()

	span.SetAttributes(attribute.String("provider.operation", "outstock"))

	body, err := json.Marshal(map[string]string{
		"cdk":  cdkCode,
		"user": userToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal outstock request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stocks/public/outstock", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build outstock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Product-ID", c.productID)

	respBody, err := c.do(span, "outstock", req)
	if err != nil {
		return "", err
	}

	taskID := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(respBody)), `"`))
	if taskID == "" {
		span.SetStatus(otelcodes.Error, "empty task id")
		return "", fmt.Errorf("%w: empty task id", provider.ErrRequestFailed)
	}

	span.SetAttributes(attribute.String("provider.task_id", taskID))
	span.SetStatus(otelcodes.Ok, "outstock started")
	return taskID, nil
}

// TaskStatus タスクの状態を取得
func (c *HTTPClient) TaskStatus(ctx context.Context, taskID string) (*provider.TaskStatusResult, error) {
	ctx, span := c.tracer.Start(ctx, "ProviderClient.TaskStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider.operation", "task_status"),
		attribute.String("provider.task_id", taskID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stocks/public/outstock/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build task status request: %w", err)
	}
	req.Header.Set("X-Product-ID", c.productID)

	respBody, err := c.do(span, "task_status", req)
	if err != nil {
		return nil, err
	}

	var result provider.TaskStatusResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: invalid task status response", provider.ErrRequestFailed)
	}

	span.SetAttributes(
		attribute.Bool("provider.pending", result.Pending),
		attribute.Bool("provider.success", result.Success),
	)
	span.SetStatus(otelcodes.Ok, "task status fetched")
	return &result, nil
}

// CheckUsage CDKの使用状況を取得
func (c *HTTPClient) CheckUsage(ctx context.Context, code string) (*provider.UsageResult, error) {
	ctx, span := c.tracer.Start(ctx, "ProviderClient.CheckUsage")
	defer span.End()

	span.SetAttributes(attribute.String("provider.operation", "check_usage"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/public/check-usage/"+code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build usage request: %w", err)
	}
	req.Header.Set("X-Product-ID", c.productID)

	respBody, err := c.do(span, "check_usage", req)
	if err != nil {
		return nil, err
	}

	var result provider.UsageResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: invalid usage response", provider.ErrRequestFailed)
	}

	span.SetStatus(otelcodes.Ok, "usage fetched")
	return &result, nil
}

// do リクエストを実行してボディを読み取る
// 非2xx応答はErrRequestFailedに包んで返す
func (c *HTTPClient) do(span trace.Span, operation string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	// レスポンス時間を記録（秒単位）
	c.metrics.RecordProviderLatency(req.Context(), operation, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(otelcodes.Error, fmt.Sprintf("unexpected status %d", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", provider.ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}
