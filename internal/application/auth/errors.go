package auth

import "errors"

var (
	// ErrInvalidCredentials ユーザー名またはパスワードが一致しないエラー
	ErrInvalidCredentials = errors.New("invalid credentials")
)
