package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	otelinfra "store-server/internal/infrastructure/observability/otel"

	authapp "store-server/internal/application/auth"
	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/attempt"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/product"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーの判定と処理
	if errors.Is(err, activation_code.ErrCodeNotFound) {
		logger.Warn(ctx, "Code not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "code_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, activation_code.ErrCodeAlreadyExists) {
		logger.Warn(ctx, "Code already exists", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "code_already_exists",
			Message: err.Error(),
		})
	}

	if errors.Is(err, activation_code.ErrCodeBlocked) ||
		errors.Is(err, activation_code.ErrCodeExpired) ||
		errors.Is(err, activation_code.ErrCodeUsageLimitReached) ||
		errors.Is(err, activation_code.ErrCodeNotRedeemable) ||
		errors.Is(err, activation_code.ErrCodeNotLinkedToProduct) {
		logger.Warn(ctx, "Code not redeemable", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "code_not_redeemable",
			Message: err.Error(),
		})
	}

	if errors.Is(err, activation_code.ErrTaskNotFound) {
		logger.Warn(ctx, "Task not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "task_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, attempt.ErrIPBlocked) {
		logger.Warn(ctx, "IP temporarily blocked", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "too_many_attempts",
			Message: err.Error(),
		})
	}

	if errors.Is(err, cdk.ErrPoolEmpty) {
		logger.Warn(ctx, "CDK pool empty", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_stock",
			Message: err.Error(),
		})
	}

	if errors.Is(err, cdk.ErrTokenNotFound) {
		logger.Warn(ctx, "CDK token not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "token_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, cdk.ErrTokenAlreadyExists) {
		logger.Warn(ctx, "CDK token already exists", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "token_already_exists",
			Message: err.Error(),
		})
	}

	if errors.Is(err, product.ErrProductNotFound) {
		logger.Warn(ctx, "Product not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "product_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, product.ErrProductInactive) {
		logger.Warn(ctx, "Product inactive", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "product_inactive",
			Message: err.Error(),
		})
	}

	if errors.Is(err, authapp.ErrInvalidCredentials) {
		logger.Warn(ctx, "Invalid credentials", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: err.Error(),
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
