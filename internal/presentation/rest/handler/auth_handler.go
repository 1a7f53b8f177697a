package handler

import (
	"net/http"

	authapp "store-server/internal/application/auth"

	"github.com/labstack/echo/v4"
)

// AuthHandler 管理者認証ハンドラー
type AuthHandler struct {
	authService *authapp.AuthApplicationService
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(authService *authapp.AuthApplicationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 管理者ログインハンドラー
// @Summary 管理者ログイン
// @Description 管理者の認証情報を検証しJWTトークンを発行します
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "ログインリクエスト"
// @Success 200 {object} LoginResponse "ログイン成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証情報不一致"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var reqBody LoginRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Username == "" || reqBody.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	req := &authapp.LoginRequest{
		Username: reqBody.Username,
		Password: reqBody.Password,
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     resp.Token,
		ExpiresIn: int(resp.ExpiresIn),
		TokenType: resp.TokenType,
	})
}
