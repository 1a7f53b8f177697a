package cdk

import (
	"fmt"
)

// TokenStatus CDKトークンのステータスを表す値オブジェクト
type TokenStatus string

const (
	TokenStatusAvailable TokenStatus = "available" // 在庫あり
	TokenStatusPending   TokenStatus = "pending"   // 割り当て済み（活性化待ち）
	TokenStatusUsed      TokenStatus = "used"      // 使用済み
	TokenStatusFailed    TokenStatus = "failed"    // 活性化失敗
)

// NewTokenStatus 新しいTokenStatusを作成
func NewTokenStatus(s string) (TokenStatus, error) {
	switch s {
	case "available", "pending", "used", "failed":
		return TokenStatus(s), nil
	default:
		return "", fmt.Errorf("invalid token status: %s", s)
	}
}

// String 文字列表現を返す
func (ts TokenStatus) String() string {
	return string(ts)
}

// Valid 有効なトークンステータスかどうかを返す
func (ts TokenStatus) Valid() bool {
	switch ts {
	case TokenStatusAvailable, TokenStatusPending, TokenStatusUsed, TokenStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal 終端状態（used/failed）かどうかを返す
func (ts TokenStatus) IsTerminal() bool {
	return ts == TokenStatusUsed || ts == TokenStatusFailed
}
