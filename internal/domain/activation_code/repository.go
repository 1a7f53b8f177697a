package activation_code

import (
	"context"
	"time"
)

// ActivationLog 活性化ログエンティティ
type ActivationLog struct {
	logID       string
	codeID      string
	userIP      string
	userAgent   string
	activatedAt time.Time
}

// NewActivationLog 新しいActivationLogエンティティを作成
func NewActivationLog(logID, codeID, userIP, userAgent string) *ActivationLog {
	return &ActivationLog{
		logID:       logID,
		codeID:      codeID,
		userIP:      userIP,
		userAgent:   userAgent,
		activatedAt: time.Now(),
	}
}

// LogID ログIDを返す
func (al *ActivationLog) LogID() string {
	return al.logID
}

// CodeID コードIDを返す
func (al *ActivationLog) CodeID() string {
	return al.codeID
}

// UserIP 引き換え元IPアドレスを返す
func (al *ActivationLog) UserIP() string {
	return al.userIP
}

// UserAgent ユーザーエージェントを返す
func (al *ActivationLog) UserAgent() string {
	return al.userAgent
}

// ActivatedAt 引き換え日時を返す
func (al *ActivationLog) ActivatedAt() time.Time {
	return al.activatedAt
}

// ActivationCodeRepository 活性化コードリポジトリインターフェース
type ActivationCodeRepository interface {
	// FindByCode 正規化済みコードで活性化コードを取得
	FindByCode(ctx context.Context, code string) (*ActivationCode, error)

	// FindByID コードIDで活性化コードを取得
	FindByID(ctx context.Context, id string) (*ActivationCode, error)

	// FindByTaskID サードパーティタスクIDで活性化コードを取得
	FindByTaskID(ctx context.Context, taskID string) (*ActivationCode, error)

	// FindAll 活性化コードの一覧を取得（商品ID・ステータスでの絞り込みは空文字で無効化）
	FindAll(ctx context.Context, productID, status string, limit, offset int) ([]*ActivationCode, int, error)

	// ExistsByCode コードが既に存在するかチェック
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create 活性化コードを作成
	Create(ctx context.Context, code *ActivationCode) error

	// Update 活性化コードを更新
	Update(ctx context.Context, code *ActivationCode) error

	// CommitRedemption 引き換えの成功を永続化する
	// 使用回数の加算は保存済みの値に対して条件付きで行われ、
	// 上限到達後のコミットはErrCodeUsageLimitReachedを返す
	CommitRedemption(ctx context.Context, code *ActivationCode) error

	// SaveLog 活性化ログを保存
	SaveLog(ctx context.Context, log *ActivationLog) error
}
