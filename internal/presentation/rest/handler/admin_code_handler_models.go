package handler

// GenerateCodesRequest コード一括生成リクエスト
// @Description コード一括生成リクエスト。usage_limit省略時は1、0は無制限
type GenerateCodesRequest struct {
	ProductID     string `json:"product_id" example:"prod_123"`
	Count         int    `json:"count" example:"100"`
	Prefix        string `json:"prefix,omitempty" example:"GPT"`
	Length        int    `json:"length,omitempty" example:"12"`
	UsageLimit    *int   `json:"usage_limit,omitempty" example:"1"`
	ExpiresInDays int    `json:"expires_in_days,omitempty" example:"365"`
	CodeType      string `json:"code_type,omitempty" example:"plus_1m"`
}

// GenerateCodesResponse コード一括生成レスポンス
// @Description コード一括生成レスポンス
type GenerateCodesResponse struct {
	Codes []string `json:"codes"`
	Count int      `json:"count" example:"100"`
}

// ImportCodeRow 取り込み対象の1行
// @Description 取り込み対象の1行（CSV由来）
type ImportCodeRow struct {
	Code       string `json:"code" example:"GPT1234ABCD"`
	ProductID  string `json:"product_id,omitempty" example:"prod_123"`
	UsageLimit *int   `json:"usage_limit,omitempty" example:"1"`
	ExpiresAt  string `json:"expires_at,omitempty" example:"2026-12-31T23:59:59Z"`
	CodeType   string `json:"code_type,omitempty" example:"plus_1m"`
}

// ImportCodesRequest コード取り込みリクエスト
// @Description コード取り込みリクエスト
type ImportCodesRequest struct {
	Rows []ImportCodeRow `json:"rows"`
}

// ImportCodesResponse コード取り込みレスポンス
// @Description コード取り込みレスポンス。部分的な成功を許容する
type ImportCodesResponse struct {
	Imported int      `json:"imported" example:"98"`
	Errors   []string `json:"errors"`
}

// ExportCodesResponse コード一覧出力レスポンス
// @Description コード一覧出力レスポンス
type ExportCodesResponse struct {
	Codes []ExportedCodeItem `json:"codes"`
	Total int                `json:"total" example:"100"`
}

// ExportedCodeItem 出力される1件のコード
// @Description 出力される1件のコード
type ExportedCodeItem struct {
	ID          string `json:"id" example:"3f1b2a..."`
	Code        string `json:"code" example:"GPT1234ABCD"`
	ProductID   string `json:"product_id" example:"prod_123"`
	Status      string `json:"status" example:"active" enums:"active,used,blocked,expired"`
	UsageLimit  int    `json:"usage_limit" example:"1"`
	UsageCount  int    `json:"usage_count" example:"0"`
	CodeType    string `json:"code_type,omitempty" example:"plus_1m"`
	ExpiresAt   string `json:"expires_at,omitempty" example:"2026-12-31T23:59:59Z"`
	ActivatedAt string `json:"activated_at,omitempty" example:"2025-06-01T12:00:00Z"`
	CreatedAt   string `json:"created_at" example:"2025-01-01T00:00:00Z"`
}

// CodeStatusChangeResponse コード状態変更レスポンス
// @Description コード状態変更レスポンス
type CodeStatusChangeResponse struct {
	Success bool   `json:"success"`
	CodeID  string `json:"code_id" example:"3f1b2a..."`
}
