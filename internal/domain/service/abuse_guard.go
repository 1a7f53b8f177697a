package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"store-server/internal/domain/attempt"
	"store-server/internal/domain/settings"
)

// GuardDecision ガード判定の結果
type GuardDecision struct {
	Allowed      bool
	BlockedUntil *time.Time
}

// AbuseGuard IPごとの失敗試行を追跡するブルートフォース対策ドメインサービス
// ローカルなベストエフォート実装であり、分散環境での厳密性は保証しない。
// 並行する2リクエストが閾値チェックを同時に通過しうるのは既知の緩和である。
type AbuseGuard struct {
	attemptRepo attempt.AttemptRepository
	provider    settings.Provider
	now         func() time.Time
}

// NewAbuseGuard 新しいAbuseGuardを作成
func NewAbuseGuard(attemptRepo attempt.AttemptRepository, provider settings.Provider) *AbuseGuard {
	return &AbuseGuard{
		attemptRepo: attemptRepo,
		provider:    provider,
		now:         time.Now,
	}
}

// SetClock 現在時刻の取得関数を差し替える（テスト用）
func (g *AbuseGuard) SetClock(now func() time.Time) {
	g.now = now
}

// CheckBlocked 指定IPが現在ブロックされているか判定する
// 有効なブロックがあれば拒否。なければウィンドウ内の失敗回数を数え、
// 閾値以上なら新たにブロックを設定して拒否する。
func (g *AbuseGuard) CheckBlocked(ctx context.Context, ip string) (*GuardDecision, error) {
	policy := g.provider.GuardPolicy(ctx)
	now := g.now()
	windowStart := now.Add(-policy.Window)

	latest, err := g.attemptRepo.FindLatestLive(ctx, ip, windowStart)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsBlocked(now) {
		return &GuardDecision{Allowed: false, BlockedUntil: latest.BlockedUntil()}, nil
	}

	failures, err := g.attemptRepo.CountFailures(ctx, ip, windowStart)
	if err != nil {
		return nil, err
	}
	if failures >= policy.MaxAttempts {
		blockedUntil := now.Add(policy.BlockDuration)
		if err := g.attemptRepo.BlockIP(ctx, ip, blockedUntil); err != nil {
			return nil, err
		}
		return &GuardDecision{Allowed: false, BlockedUntil: &blockedUntil}, nil
	}

	return &GuardDecision{Allowed: true}, nil
}

// RecordFailure 失敗試行を記録する
// ウィンドウ内に既存の記録があれば回数を加算し、なければ新規作成する。
func (g *AbuseGuard) RecordFailure(ctx context.Context, ip string) error {
	policy := g.provider.GuardPolicy(ctx)
	now := g.now()
	windowStart := now.Add(-policy.Window)

	latest, err := g.attemptRepo.FindLatestLive(ctx, ip, windowStart)
	if err != nil {
		return err
	}
	if latest != nil {
		latest.Increment()
		return g.attemptRepo.Save(ctx, latest)
	}

	return g.attemptRepo.Save(ctx, attempt.NewAttempt(uuid.NewString(), ip, false, now))
}

// RecordSuccess 成功試行を記録する
// 既存の記録に統合せず、常に新しい成功記録を追加する。
func (g *AbuseGuard) RecordSuccess(ctx context.Context, ip string) error {
	return g.attemptRepo.Save(ctx, attempt.NewAttempt(uuid.NewString(), ip, true, g.now()))
}
