package attempt

import (
	"context"
	"time"
)

// AttemptRepository 試行記録リポジトリインターフェース
type AttemptRepository interface {
	// FindLatestLive 指定IPの「生きている」最新の記録を取得する
	// （blockedUntilが未来、またはウィンドウ開始時刻以降に作成されたもの）。
	// 該当がなければ (nil, nil) を返す。
	FindLatestLive(ctx context.Context, ip string, windowStart time.Time) (*Attempt, error)

	// CountFailures ウィンドウ内の失敗試行回数を取得
	CountFailures(ctx context.Context, ip string, windowStart time.Time) (int, error)

	// BlockIP 指定IPの未ブロック記録にblockedUntilを設定
	BlockIP(ctx context.Context, ip string, blockedUntil time.Time) error

	// Save 試行記録を作成または更新
	Save(ctx context.Context, attempt *Attempt) error
}
