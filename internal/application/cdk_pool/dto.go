package cdk_pool

// ImportRequest CDKトークン取り込みのリクエストDTO
// Verifyを指定するとプロバイダー側でCDKの有効性を事前チェックする。
type ImportRequest struct {
	Category string
	CDKs     []string
	Verify   bool
}

// ImportResponse CDKトークン取り込みのレスポンスDTO
// 部分的な成功を許容し、行ごとのエラーを返す。
type ImportResponse struct {
	Imported int
	Errors   []string
}

// StatsResponse カテゴリごとの在庫数レスポンスDTO
type StatsResponse struct {
	Available map[string]int
}
