package handler

// ImportCDKsRequest CDKトークン取り込みリクエスト
// @Description CDKトークン取り込みリクエスト
type ImportCDKsRequest struct {
	Category string   `json:"category" example:"plus_1m"`
	Tokens   []string `json:"tokens"`
	Verify   bool     `json:"verify,omitempty"`
}

// ImportCDKsResponse CDKトークン取り込みレスポンス
// @Description CDKトークン取り込みレスポンス。部分的な成功を許容する
type ImportCDKsResponse struct {
	Imported int      `json:"imported" example:"48"`
	Errors   []string `json:"errors"`
}

// CDKStatsResponse CDK在庫統計レスポンス
// @Description カテゴリごとのavailableトークン数
type CDKStatsResponse struct {
	Available map[string]int `json:"available"`
}
