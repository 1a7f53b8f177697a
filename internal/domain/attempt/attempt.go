package attempt

import (
	"time"
)

// Attempt 引き換え試行記録エンティティ
// 送信元IPごとの失敗回数と一時ブロックを追跡する。
type Attempt struct {
	id           string
	ipAddress    string
	isSuccess    bool
	attemptCount int
	blockedUntil *time.Time
	createdAt    time.Time
}

// NewAttempt 新しいAttemptエンティティを作成
func NewAttempt(id, ipAddress string, isSuccess bool, now time.Time) *Attempt {
	return &Attempt{
		id:           id,
		ipAddress:    ipAddress,
		isSuccess:    isSuccess,
		attemptCount: 1,
		createdAt:    now,
	}
}

// ID 試行IDを返す
func (a *Attempt) ID() string { return a.id }

// IPAddress 送信元IPアドレスを返す
func (a *Attempt) IPAddress() string { return a.ipAddress }

// IsSuccess 成功した試行かどうかを返す
func (a *Attempt) IsSuccess() bool { return a.isSuccess }

// AttemptCount ウィンドウ内の試行回数を返す
func (a *Attempt) AttemptCount() int { return a.attemptCount }

// BlockedUntil ブロック解除日時を返す（nilはブロックなし）
func (a *Attempt) BlockedUntil() *time.Time { return a.blockedUntil }

// CreatedAt 作成日時を返す
func (a *Attempt) CreatedAt() time.Time { return a.createdAt }

// IsBlocked 指定時刻でブロック中かどうかを返す
func (a *Attempt) IsBlocked(now time.Time) bool {
	return a.blockedUntil != nil && a.blockedUntil.After(now)
}

// Increment 失敗試行を1回加算する
func (a *Attempt) Increment() {
	a.attemptCount++
	a.isSuccess = false
}

// SetBlockedUntil ブロック解除日時を設定（リポジトリから読み込んだ際に使用）
func (a *Attempt) SetBlockedUntil(t *time.Time) {
	a.blockedUntil = t
}

// SetAttemptCount 試行回数を設定（リポジトリから読み込んだ際に使用）
func (a *Attempt) SetAttemptCount(count int) {
	a.attemptCount = count
}
