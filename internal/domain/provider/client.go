package provider

import (
	"context"
	"errors"
)

var (
	// ErrRequestFailed アップストリームへのリクエストが失敗したエラー
	// ネットワークエラー・非2xx応答・不正な応答はすべてこのエラーに包まれる。
	ErrRequestFailed = errors.New("activation provider request failed")
)

// CheckResult CDK有効性チェックの結果
type CheckResult struct {
	Code           string `json:"code"`
	Used           bool   `json:"used"`
	AppName        string `json:"app_name"`
	AppProductName string `json:"app_product_name"`
}

// TaskStatusResult 活性化タスクの状態
type TaskStatusResult struct {
	TaskID  string `json:"task_id"`
	CDK     string `json:"cdk"`
	Pending bool   `json:"pending"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UsageResult CDK使用状況チェックの結果
type UsageResult struct {
	Code       string `json:"code"`
	Used       bool   `json:"used"`
	AppName    string `json:"app_name"`
	User       string `json:"user"`
	RedeemTime string `json:"redeem_time"`
}

// Client サードパーティ活性化プロバイダーのクライアントインターフェース
// プロバイダーはブラックボックスのHTTPサービスとして扱う:
// トークンを送信するとタスクIDが返り、タスクIDをポーリングすると
// pending/success/failureが返る。
type Client interface {
	// CheckCDK CDKの有効性をチェック
	CheckCDK(ctx context.Context, code string) (*CheckResult, error)

	// Outstock 活性化タスクを開始してタスクIDを返す
	Outstock(ctx context.Context, cdkCode, userToken string) (string, error)

	// TaskStatus タスクの状態を取得
	TaskStatus(ctx context.Context, taskID string) (*TaskStatusResult, error)

	// CheckUsage CDKの使用状況を取得
	CheckUsage(ctx context.Context, code string) (*UsageResult, error)
}
