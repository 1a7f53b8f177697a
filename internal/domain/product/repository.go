package product

import (
	"context"
)

// ProductRepository 商品リポジトリインターフェース
type ProductRepository interface {
	// FindByID 商品IDで商品を取得（ファイル・テンプレートを含めて読み込む）
	FindByID(ctx context.Context, id string) (*Product, error)
}
