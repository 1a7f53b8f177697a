package cdk

import (
	"errors"
	"time"
)

// Token 事前購入済みのサードパーティ活性化トークン（CDK）エンティティ
type Token struct {
	id          string
	cdk         string
	gptType     string
	status      TokenStatus
	orderCode   string // このトークンを確保した活性化コード
	allocatedAt *time.Time
	usedAt      *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewToken 新しいTokenエンティティを作成
func NewToken(id, cdkCode, gptType string) (*Token, error) {
	if cdkCode == "" {
		return nil, errors.New("invalid cdk")
	}
	if gptType == "" {
		return nil, errors.New("invalid cdk category")
	}

	now := time.Now()
	return &Token{
		id:        id,
		cdk:       cdkCode,
		gptType:   gptType,
		status:    TokenStatusAvailable,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID トークンIDを返す
func (t *Token) ID() string { return t.id }

// CDK トークン文字列を返す
func (t *Token) CDK() string { return t.cdk }

// GPTType カテゴリを返す
func (t *Token) GPTType() string { return t.gptType }

// Status ステータスを返す
func (t *Token) Status() TokenStatus { return t.status }

// OrderCode 確保した活性化コードを返す
func (t *Token) OrderCode() string { return t.orderCode }

// AllocatedAt 割り当て日時を返す
func (t *Token) AllocatedAt() *time.Time { return t.allocatedAt }

// UsedAt 使用日時を返す
func (t *Token) UsedAt() *time.Time { return t.usedAt }

// CreatedAt 作成日時を返す
func (t *Token) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt 更新日時を返す
func (t *Token) UpdatedAt() time.Time { return t.updatedAt }

// MarkUsed トークンを使用済みにする
func (t *Token) MarkUsed(now time.Time) {
	t.status = TokenStatusUsed
	t.usedAt = &now
	t.updatedAt = now
}

// MarkFailed トークンを活性化失敗にする
func (t *Token) MarkFailed(now time.Time) {
	t.status = TokenStatusFailed
	t.updatedAt = now
}

// SetStatus ステータスを設定（リポジトリから読み込んだ際に使用）
func (t *Token) SetStatus(status TokenStatus) {
	t.status = status
}

// SetAllocation 割り当て情報を設定（リポジトリから読み込んだ際に使用）
func (t *Token) SetAllocation(orderCode string, allocatedAt, usedAt *time.Time) {
	t.orderCode = orderCode
	t.allocatedAt = allocatedAt
	t.usedAt = usedAt
}
