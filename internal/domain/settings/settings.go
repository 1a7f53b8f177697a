package settings

import (
	"context"
	"time"
)

// 設定キー
const (
	KeyMaxAttempts           = "max_attempts"
	KeyWindowMinutes         = "max_attempts_window_minutes"
	KeyBlockDurationMinutes  = "block_duration_minutes"
	KeyDefaultExpirationDays = "default_expiration_days"
)

// 静的フォールバック値（設定ストアに値がない・解釈できない場合に使用）
const (
	DefaultMaxAttempts          = 5
	DefaultWindowMinutes        = 15
	DefaultBlockDurationMinutes = 30
	DefaultExpirationDays       = 365
)

// GuardPolicy 不正試行ガードの動作パラメータ
type GuardPolicy struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

// DefaultGuardPolicy 静的フォールバック値のGuardPolicyを返す
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{
		MaxAttempts:   DefaultMaxAttempts,
		Window:        DefaultWindowMinutes * time.Minute,
		BlockDuration: DefaultBlockDurationMinutes * time.Minute,
	}
}

// Repository キーバリュー設定ストアのリポジトリインターフェース
type Repository interface {
	// FindAll すべての設定をキーバリューで取得
	FindAll(ctx context.Context) (map[string]string, error)
}

// Provider 設定値の取得インターフェース
// 実装はTTL付きキャッシュを持ち、明示的なRefreshで再読込できる。
type Provider interface {
	// GetInt 整数設定値を取得（未設定・解釈不能時はフォールバック値を返す）
	GetInt(ctx context.Context, key string, fallback int) int

	// GuardPolicy 現在のガードポリシーを取得
	GuardPolicy(ctx context.Context) GuardPolicy

	// Refresh キャッシュを破棄して次回取得時に再読込させる
	Refresh()
}
