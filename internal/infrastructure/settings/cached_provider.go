package settings

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/settings"
)

// CachedProvider TTL付きキャッシュを持つsettings.Provider実装
// 設定ストアへの問い合わせをTTLの間キャッシュし、読み込みに失敗した
// 場合は静的フォールバック値で動作を継続する。
type CachedProvider struct {
	repo   settings.Repository
	ttl    time.Duration
	tracer trace.Tracer
	now    func() time.Time

	mu       sync.RWMutex
	values   map[string]string
	loadedAt time.Time
}

// NewCachedProvider 新しいCachedProviderを作成
func NewCachedProvider(repo settings.Repository, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		repo:   repo,
		ttl:    ttl,
		tracer: otel.Tracer("settings-provider"),
		now:    time.Now,
	}
}

// SetClock 現在時刻の取得関数を差し替える（テスト用）
func (p *CachedProvider) SetClock(now func() time.Time) {
	p.now = now
}

// GetInt 整数設定値を取得
// 未設定・解釈不能な値はフォールバック値を返す
func (p *CachedProvider) GetInt(ctx context.Context, key string, fallback int) int {
	values := p.load(ctx)

	raw, ok := values[key]
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// GuardPolicy 現在のガードポリシーを取得
func (p *CachedProvider) GuardPolicy(ctx context.Context) settings.GuardPolicy {
	return settings.GuardPolicy{
		MaxAttempts:   p.GetInt(ctx, settings.KeyMaxAttempts, settings.DefaultMaxAttempts),
		Window:        time.Duration(p.GetInt(ctx, settings.KeyWindowMinutes, settings.DefaultWindowMinutes)) * time.Minute,
		BlockDuration: time.Duration(p.GetInt(ctx, settings.KeyBlockDurationMinutes, settings.DefaultBlockDurationMinutes)) * time.Minute,
	}
}

// Refresh キャッシュを破棄して次回取得時に再読込させる
func (p *CachedProvider) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = nil
	p.loadedAt = time.Time{}
}

// load キャッシュが有効ならそれを、期限切れなら再読込して返す
// 再読込に失敗した場合は期限切れのキャッシュを使い続ける
func (p *CachedProvider) load(ctx context.Context) map[string]string {
	p.mu.RLock()
	if p.values != nil && p.now().Sub(p.loadedAt) < p.ttl {
		values := p.values
		p.mu.RUnlock()
		return values
	}
	p.mu.RUnlock()

	ctx, span := p.tracer.Start(ctx, "CachedProvider.load")
	defer span.End()

	values, err := p.repo.FindAll(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		// 読み込み失敗時は古いキャッシュ（なければ空）で継続
		if p.values != nil {
			return p.values
		}
		return map[string]string{}
	}

	p.values = values
	p.loadedAt = p.now()
	return p.values
}
