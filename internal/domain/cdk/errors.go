package cdk

import "errors"

var (
	// ErrTokenNotFound CDKトークンが見つからないエラー
	ErrTokenNotFound = errors.New("cdk token not found")
	// ErrTokenAlreadyExists CDKトークンが既に存在するエラー
	ErrTokenAlreadyExists = errors.New("cdk token already exists")
	// ErrPoolEmpty 指定カテゴリの在庫が存在しないエラー
	ErrPoolEmpty = errors.New("cdk pool empty")
)
