package activation

import (
	"store-server/internal/domain/product"
)

// RedeemRequest コード引き換えリクエスト
type RedeemRequest struct {
	Code      string
	UserToken string // サブスクリプション商品の活性化先アカウント
	UserIP    string
	UserAgent string
}

// RedeemResponse コード引き換えレスポンス
type RedeemResponse struct {
	Code       string
	UsageCount int
	Payload    *product.Payload
}
