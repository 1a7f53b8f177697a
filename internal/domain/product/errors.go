package product

import "errors"

var (
	// ErrProductNotFound 商品が見つからないエラー
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive 商品が無効化されているエラー
	ErrProductInactive = errors.New("product inactive")
)
