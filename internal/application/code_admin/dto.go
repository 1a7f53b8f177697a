package code_admin

import (
	"time"
)

// GenerateRequest コード生成のリクエストDTO
type GenerateRequest struct {
	ProductID     string
	Count         int
	Prefix        string
	Length        int // 0 で既定(12)
	UsageLimit    int // 0 は無制限
	ExpiresInDays int // 0 で設定ストアの既定値
	CodeType      string
}

// GenerateResponse コード生成のレスポンスDTO
type GenerateResponse struct {
	Codes []string
}

// ImportRow 取り込み対象の1行（CSV由来）
type ImportRow struct {
	Code       string
	ProductID  string
	UsageLimit int
	ExpiresAt  *time.Time
	CodeType   string
}

// ImportCodesRequest コード取り込みのリクエストDTO
type ImportCodesRequest struct {
	Rows []ImportRow
}

// ImportCodesResponse コード取り込みのレスポンスDTO
// 部分的な成功を許容し、行ごとのエラーを返す。
type ImportCodesResponse struct {
	Imported int
	Errors   []string
}

// ExportRequest コード一覧出力のリクエストDTO
// ProductID・Statusは空文字で絞り込みを無効化する。
type ExportRequest struct {
	ProductID string
	Status    string
}

// ExportedCode 出力される1件のコード
type ExportedCode struct {
	ID          string
	Code        string
	ProductID   string
	Status      string
	UsageLimit  int
	UsageCount  int
	CodeType    string
	ExpiresAt   *time.Time
	ActivatedAt *time.Time
	CreatedAt   time.Time
}

// ExportResponse コード一覧出力のレスポンスDTO
type ExportResponse struct {
	Codes []*ExportedCode
	Total int
}
