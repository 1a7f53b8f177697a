package cdk

import (
	"context"
)

// TokenRepository CDKトークンプールリポジトリインターフェース
type TokenRepository interface {
	// Allocate 指定カテゴリの最も古いavailableトークンを1件だけ
	// 排他的にpendingへ遷移させて返す（先入れ先出し）。
	// 在庫がない場合は (nil, nil) を返す。
	// 割り当ては単一の条件付きUPDATEで行われ、並行する引き換えが
	// 同じトークンを受け取ることはない。
	Allocate(ctx context.Context, gptType, orderCode string) (*Token, error)

	// FindByCDK トークン文字列でトークンを取得
	FindByCDK(ctx context.Context, cdkCode string) (*Token, error)

	// Save トークンのステータス・割り当て情報を保存
	Save(ctx context.Context, token *Token) error

	// Create トークンを新規作成（重複時はErrTokenAlreadyExists）
	Create(ctx context.Context, token *Token) error

	// CountAvailable カテゴリごとの在庫数を取得
	CountAvailable(ctx context.Context) (map[string]int, error)
}
