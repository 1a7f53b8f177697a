package handler

// ActivateRequest コード引き換えリクエスト
// @Description コード引き換えリクエスト
type ActivateRequest struct {
	Code string `json:"code" example:"GPT1234ABCD"`
	User string `json:"user,omitempty" example:"user@example.com"`
}

// ActivateResponse コード引き換えレスポンス
// @Description コード引き換えレスポンス。失敗時はerrorに人間可読な文字列が入る
type ActivateResponse struct {
	Success bool            `json:"success"`
	Data    *ActivationData `json:"data,omitempty"`
	Error   string          `json:"error,omitempty" example:"code not found"`
}

// ActivationData 引き換え成功時のペイロード
// @Description 引き換え成功時のペイロード。商品タイプによって内容が変わる
type ActivationData struct {
	Code        string          `json:"code" example:"GPT1234ABCD"`
	UsageCount  int             `json:"usage_count" example:"1"`
	Type        string          `json:"type" example:"subscription" enums:"digital_file,text,link,subscription"`
	ProductID   string          `json:"product_id" example:"prod_123"`
	ProductName string          `json:"product_name" example:"ChatGPT Plus 1ヶ月"`
	Description string          `json:"description,omitempty" example:"Plus 1M"`
	Instruction string          `json:"instruction,omitempty" example:"アカウントに適用されます"`
	Files       []FileItem      `json:"files,omitempty"`
	TaskID      string          `json:"task_id,omitempty" example:"task_42"`
	CDK         string          `json:"cdk,omitempty" example:"CDK-XXXX-YYYY"`
	Partner     *PartnerSection `json:"partner,omitempty"`
}

// FileItem 商品ファイル
// @Description 商品ファイル
type FileItem struct {
	Name     string `json:"name" example:"配布物.zip"`
	Path     string `json:"path" example:"/files/archive.zip"`
	MimeType string `json:"mime_type" example:"application/zip"`
	Type     string `json:"type" example:"archive"`
}

// PartnerSection パートナー商品セクション
// @Description コードメタデータ経由で紐付くパートナー商品
type PartnerSection struct {
	ProductID   string     `json:"product_id" example:"prod_456"`
	ProductName string     `json:"product_name" example:"特典パック"`
	Instruction string     `json:"instruction,omitempty"`
	Files       []FileItem `json:"files,omitempty"`
}

// TaskStatusResponse タスク照合レスポンス
// @Description タスク照合レスポンス
type TaskStatusResponse struct {
	Success bool            `json:"success"`
	Data    *TaskStatusData `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TaskStatusData タスクの現在状態
// @Description タスクの現在状態
type TaskStatusData struct {
	TaskID  string `json:"task_id" example:"task_42"`
	Pending bool   `json:"pending"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty" example:"activated"`
	CDK     string `json:"cdk,omitempty" example:"CDK-XXXX-YYYY"`
}

// UsageResponse CDK使用状況レスポンス
// @Description CDK使用状況レスポンス
type UsageResponse struct {
	Success bool       `json:"success"`
	Data    *UsageData `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// UsageData プロバイダー側でのCDK使用状況
// @Description プロバイダー側でのCDK使用状況
type UsageData struct {
	CDK        string `json:"cdk" example:"CDK-XXXX-YYYY"`
	Used       bool   `json:"used"`
	AppName    string `json:"app_name,omitempty" example:"ChatGPT"`
	User       string `json:"user,omitempty" example:"user@example.com"`
	RedeemTime string `json:"redeem_time,omitempty" example:"2026-01-15 12:00:00"`
}
