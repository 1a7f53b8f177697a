package reconciliation

// TaskStatusResponse タスク照合結果のレスポンスDTO
type TaskStatusResponse struct {
	TaskID  string
	Code    string
	CDK     string
	Status  string // pending / success / failed
	Message string
}

// UsageResponse CDK使用状況のレスポンスDTO
type UsageResponse struct {
	CDK        string
	Used       bool
	AppName    string
	User       string
	RedeemTime string
}
