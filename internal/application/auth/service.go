package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"store-server/internal/infrastructure/config"
	otelinfra "store-server/internal/infrastructure/observability/otel"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AuthApplicationService 管理者認証アプリケーションサービス
type AuthApplicationService struct {
	jwtConfig   *config.JWTConfig
	adminConfig *config.AdminConfig
	logger      *otelinfra.Logger
}

// NewAuthApplicationService 新しいAuthApplicationServiceを作成
func NewAuthApplicationService(jwtConfig *config.JWTConfig, adminConfig *config.AdminConfig, logger *otelinfra.Logger) *AuthApplicationService {
	return &AuthApplicationService{
		jwtConfig:   jwtConfig,
		adminConfig: adminConfig,
		logger:      logger,
	}
}

// Login 管理者の認証情報を検証しJWTトークンを発行する
// パスワードはSHA-256ハッシュのhex表現で設定値と比較する。
func (s *AuthApplicationService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AuthApplicationService.Login")
	defer span.End()

	span.SetAttributes(
		attribute.String("auth.username", req.Username),
	)

	if req.Username == "" || req.Password == "" {
		err := fmt.Errorf("username and password are required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !s.verify(req.Username, req.Password) {
		span.RecordError(ErrInvalidCredentials)
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		s.logger.Warn(ctx, "Admin login failed", map[string]interface{}{
			"username": req.Username,
		})
		return nil, ErrInvalidCredentials
	}

	// トークンの有効期限を計算
	now := time.Now()
	expiresAt := now.Add(s.jwtConfig.Expiration)

	// JWTクレームを作成
	claims := jwt.MapClaims{
		"sub":  req.Username,
		"role": "admin",
		"iss":  s.jwtConfig.Issuer,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	// JWTトークンを生成
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Failed to generate token", err, map[string]interface{}{
			"username": req.Username,
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(ctx, "Admin logged in", map[string]interface{}{
		"username":   req.Username,
		"expires_at": expiresAt.Unix(),
	})

	return &LoginResponse{
		Token:     tokenString,
		ExpiresIn: int64(s.jwtConfig.Expiration.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// verify ユーザー名とパスワードハッシュを定数時間で比較する
func (s *AuthApplicationService) verify(username, password string) bool {
	sum := sha256.Sum256([]byte(password))
	hash := hex.EncodeToString(sum[:])

	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminConfig.Username))
	passMatch := subtle.ConstantTimeCompare([]byte(hash), []byte(s.adminConfig.PasswordHash))
	return userMatch == 1 && passMatch == 1
}
