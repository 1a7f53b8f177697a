package product

import (
	"fmt"
)

// ProductType 商品タイプを表す値オブジェクト
type ProductType string

const (
	ProductTypeDigitalFile  ProductType = "digital_file" // ダウンロード商品
	ProductTypeText         ProductType = "text"         // テキスト説明商品
	ProductTypeLink         ProductType = "link"         // リンク商品
	ProductTypeSubscription ProductType = "subscription" // サードパーティ活性化トークンが必要な商品
)

// NewProductType 新しいProductTypeを作成
func NewProductType(s string) (ProductType, error) {
	switch s {
	case "digital_file", "text", "link", "subscription":
		return ProductType(s), nil
	default:
		return "", fmt.Errorf("invalid product type: %s", s)
	}
}

// String 文字列表現を返す
func (pt ProductType) String() string {
	return string(pt)
}

// Valid 有効な商品タイプかどうかを返す
func (pt ProductType) Valid() bool {
	switch pt {
	case ProductTypeDigitalFile, ProductTypeText, ProductTypeLink, ProductTypeSubscription:
		return true
	default:
		return false
	}
}

// RequiresCDK CDKトークンの割り当てが必要な商品タイプかどうかを返す
func (pt ProductType) RequiresCDK() bool {
	return pt == ProductTypeSubscription
}
