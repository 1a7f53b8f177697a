package activation_code

import "errors"

var (
	// ErrCodeNotFound 活性化コードが見つからないエラー
	ErrCodeNotFound = errors.New("code not found")
	// ErrCodeBlocked 活性化コードがブロックされているエラー
	ErrCodeBlocked = errors.New("code blocked")
	// ErrCodeExpired 活性化コードが期限切れエラー
	ErrCodeExpired = errors.New("code expired")
	// ErrCodeUsageLimitReached 活性化コードの使用上限に達しているエラー
	ErrCodeUsageLimitReached = errors.New("code usage limit reached")
	// ErrCodeAlreadyExists 活性化コードが既に存在するエラー
	ErrCodeAlreadyExists = errors.New("code already exists")
	// ErrCodeNotLinkedToProduct 活性化コードが商品に紐付いていないエラー
	ErrCodeNotLinkedToProduct = errors.New("code not linked to a product")
	// ErrCodeNotRedeemable 引き換え不可能なコードエラー
	ErrCodeNotRedeemable = errors.New("code not redeemable")
	// ErrTaskNotFound タスクIDに対応するコードが見つからないエラー
	ErrTaskNotFound = errors.New("task not found")
)
