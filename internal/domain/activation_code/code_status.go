package activation_code

import (
	"fmt"
)

// CodeStatus コードステータスを表す値オブジェクト
type CodeStatus string

const (
	CodeStatusActive  CodeStatus = "active"  // 有効
	CodeStatusUsed    CodeStatus = "used"    // 使用済み
	CodeStatusBlocked CodeStatus = "blocked" // ブロック済み
	CodeStatusExpired CodeStatus = "expired" // 期限切れ
)

// NewCodeStatus 新しいCodeStatusを作成
func NewCodeStatus(s string) (CodeStatus, error) {
	switch s {
	case "active", "used", "blocked", "expired":
		return CodeStatus(s), nil
	default:
		return "", fmt.Errorf("invalid code status: %s", s)
	}
}

// String 文字列表現を返す
func (cs CodeStatus) String() string {
	return string(cs)
}

// Valid 有効なコードステータスかどうかを返す
func (cs CodeStatus) Valid() bool {
	switch cs {
	case CodeStatusActive, CodeStatusUsed, CodeStatusBlocked, CodeStatusExpired:
		return true
	default:
		return false
	}
}

// IsActive 有効状態かどうかを返す
func (cs CodeStatus) IsActive() bool {
	return cs == CodeStatusActive
}

// IsBlocked ブロック状態かどうかを返す
func (cs CodeStatus) IsBlocked() bool {
	return cs == CodeStatusBlocked
}
