package handler

// LoginRequest 管理者ログインリクエスト
// @Description 管理者ログインリクエスト
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"secret"`
}

// LoginResponse 管理者ログインレスポンス
// @Description 管理者ログインレスポンス
type LoginResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJhZG1pbiIsImV4cCI6MTcwMDAwMDAwMH0.signature"`
	ExpiresIn int    `json:"expires_in" example:"3600"`
	TokenType string `json:"token_type" example:"Bearer"`
}

// ErrorResponse エラーレスポンス
// @Description エラーレスポンス
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}
