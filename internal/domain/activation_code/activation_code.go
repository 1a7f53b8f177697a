package activation_code

import (
	"errors"
	"time"
)

// ActivationCode 活性化コードエンティティ
type ActivationCode struct {
	id          string
	code        string
	productID   string
	codeType    string
	status      CodeStatus
	usageLimit  int // 0 = 無制限
	usageCount  int
	expiresAt   *time.Time // nil = 無期限
	metadata    map[string]interface{}
	userIP      string
	activatedAt *time.Time
	cdkCode     string
	cdkStatus   string
	cdkTaskID   string
	cdkMessage  string
	createdAt   time.Time
	updatedAt   time.Time
}

// CDKステータス（サードパーティ活性化タスクの状態）
const (
	CDKStatusPending = "pending"
	CDKStatusSuccess = "success"
	CDKStatusFailed  = "failed"
)

// NewActivationCode 新しいActivationCodeエンティティを作成
// コードは正規化済みであることを前提とする
func NewActivationCode(
	id string,
	code string,
	productID string,
	codeType string,
	usageLimit int,
	expiresAt *time.Time,
	metadata map[string]interface{},
) (*ActivationCode, error) {
	if code == "" {
		return nil, errors.New("invalid code")
	}
	if usageLimit < 0 {
		return nil, errors.New("invalid usage limit")
	}

	now := time.Now()
	return &ActivationCode{
		id:         id,
		code:       code,
		productID:  productID,
		codeType:   codeType,
		status:     CodeStatusActive,
		usageLimit: usageLimit,
		usageCount: 0,
		expiresAt:  expiresAt,
		metadata:   metadata,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ID コードIDを返す
func (ac *ActivationCode) ID() string {
	return ac.id
}

// Code コードを返す
func (ac *ActivationCode) Code() string {
	return ac.code
}

// ProductID 紐付いている商品IDを返す
func (ac *ActivationCode) ProductID() string {
	return ac.productID
}

// CodeType コードタイプを返す（説明テンプレートの選択に使用）
func (ac *ActivationCode) CodeType() string {
	return ac.codeType
}

// Status ステータスを返す
func (ac *ActivationCode) Status() CodeStatus {
	return ac.status
}

// UsageLimit 使用上限を返す（0は無制限）
func (ac *ActivationCode) UsageLimit() int {
	return ac.usageLimit
}

// UsageCount 使用回数を返す
func (ac *ActivationCode) UsageCount() int {
	return ac.usageCount
}

// ExpiresAt 有効期限を返す（nilは無期限）
func (ac *ActivationCode) ExpiresAt() *time.Time {
	return ac.expiresAt
}

// Metadata メタデータを返す
func (ac *ActivationCode) Metadata() map[string]interface{} {
	return ac.metadata
}

// UserIP 最後に引き換えたIPアドレスを返す
func (ac *ActivationCode) UserIP() string {
	return ac.userIP
}

// ActivatedAt 最後の引き換え日時を返す
func (ac *ActivationCode) ActivatedAt() *time.Time {
	return ac.activatedAt
}

// CDKCode 割り当てられたCDKトークンを返す
func (ac *ActivationCode) CDKCode() string {
	return ac.cdkCode
}

// CDKStatus サードパーティタスクのステータスを返す
func (ac *ActivationCode) CDKStatus() string {
	return ac.cdkStatus
}

// CDKTaskID サードパーティタスクIDを返す
func (ac *ActivationCode) CDKTaskID() string {
	return ac.cdkTaskID
}

// CDKMessage サードパーティタスクのメッセージを返す
func (ac *ActivationCode) CDKMessage() string {
	return ac.cdkMessage
}

// CreatedAt 作成日時を返す
func (ac *ActivationCode) CreatedAt() time.Time {
	return ac.createdAt
}

// UpdatedAt 更新日時を返す
func (ac *ActivationCode) UpdatedAt() time.Time {
	return ac.updatedAt
}

// IsExpired 指定時刻で有効期限切れかどうかを返す
func (ac *ActivationCode) IsExpired(now time.Time) bool {
	return ac.expiresAt != nil && ac.expiresAt.Before(now)
}

// UsageExhausted 使用上限に達しているかどうかを返す
// usageLimit = 0 は無制限として扱う
func (ac *ActivationCode) UsageExhausted() bool {
	return ac.usageLimit > 0 && ac.usageCount >= ac.usageLimit
}

// Validate 引き換え可能かどうかを検証する
// 不可の場合は理由を示すドメインエラーを返す
func (ac *ActivationCode) Validate(now time.Time) error {
	if ac.status.IsBlocked() {
		return ErrCodeBlocked
	}
	if ac.IsExpired(now) {
		return ErrCodeExpired
	}
	if ac.UsageExhausted() {
		return ErrCodeUsageLimitReached
	}
	if ac.productID == "" {
		return ErrCodeNotLinkedToProduct
	}
	return nil
}

// Redeem 引き換え処理（使用回数を増やし、IPと日時を記録する）
func (ac *ActivationCode) Redeem(now time.Time, ip string) error {
	if err := ac.Validate(now); err != nil {
		return err
	}
	ac.usageCount++
	ac.userIP = ip
	ac.activatedAt = &now
	ac.updatedAt = now
	return nil
}

// MarkExpired ステータスを期限切れにする
func (ac *ActivationCode) MarkExpired() {
	ac.status = CodeStatusExpired
	ac.updatedAt = time.Now()
}

// Block コードをブロックする
func (ac *ActivationCode) Block() {
	ac.status = CodeStatusBlocked
	ac.updatedAt = time.Now()
}

// Unblock ブロックを解除する
// 使用実績があればused、なければactiveに戻す
func (ac *ActivationCode) Unblock() {
	if ac.usageCount > 0 {
		ac.status = CodeStatusUsed
	} else {
		ac.status = CodeStatusActive
	}
	ac.updatedAt = time.Now()
}

// AttachCDK 割り当てたCDKトークンとタスクIDを記録する
func (ac *ActivationCode) AttachCDK(cdk, taskID string) {
	ac.cdkCode = cdk
	ac.cdkTaskID = taskID
	ac.cdkStatus = CDKStatusPending
	ac.updatedAt = time.Now()
}

// MarkCDKFailed サードパーティへの送信失敗を記録する
func (ac *ActivationCode) MarkCDKFailed(message string) {
	ac.cdkStatus = CDKStatusFailed
	ac.cdkMessage = message
	ac.updatedAt = time.Now()
}

// ApplyTaskResult タスクの照合結果をコードに書き戻す
func (ac *ActivationCode) ApplyTaskResult(pending, success bool, message, cdk string) {
	switch {
	case pending:
		ac.cdkStatus = CDKStatusPending
	case success:
		ac.cdkStatus = CDKStatusSuccess
	default:
		ac.cdkStatus = CDKStatusFailed
	}
	ac.cdkMessage = message
	if cdk != "" {
		ac.cdkCode = cdk
	}
	ac.updatedAt = time.Now()
}

// SetID コードIDを設定（リポジトリから読み込んだ際に使用）
func (ac *ActivationCode) SetID(id string) {
	ac.id = id
}

// SetStatus ステータスを設定（リポジトリから読み込んだ際に使用）
func (ac *ActivationCode) SetStatus(status CodeStatus) {
	ac.status = status
}

// SetUsageCount 使用回数を設定（リポジトリから読み込んだ際に使用）
func (ac *ActivationCode) SetUsageCount(count int) {
	ac.usageCount = count
}

// SetRedemptionStamp 引き換え記録を設定（リポジトリから読み込んだ際に使用）
func (ac *ActivationCode) SetRedemptionStamp(ip string, activatedAt *time.Time) {
	ac.userIP = ip
	ac.activatedAt = activatedAt
}

// SetCDKState CDK関連フィールドを設定（リポジトリから読み込んだ際に使用）
func (ac *ActivationCode) SetCDKState(cdkCode, cdkStatus, cdkTaskID, cdkMessage string) {
	ac.cdkCode = cdkCode
	ac.cdkStatus = cdkStatus
	ac.cdkTaskID = cdkTaskID
	ac.cdkMessage = cdkMessage
}

// MustNewActivationCode テスト用ヘルパー: NewActivationCodeを呼び出し、エラーが発生した場合はpanicする
func MustNewActivationCode(
	id string,
	code string,
	productID string,
	codeType string,
	usageLimit int,
	expiresAt *time.Time,
	metadata map[string]interface{},
) *ActivationCode {
	ac, err := NewActivationCode(id, code, productID, codeType, usageLimit, expiresAt, metadata)
	if err != nil {
		panic(err)
	}
	return ac
}
