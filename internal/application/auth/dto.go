package auth

// LoginRequest 管理者ログインリクエスト
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse 管理者ログインレスポンス
type LoginResponse struct {
	Token     string
	ExpiresIn int64  // 秒単位
	TokenType string // "Bearer"
}
