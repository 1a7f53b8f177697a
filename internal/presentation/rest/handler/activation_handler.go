package handler

import (
	"errors"
	"net/http"

	activationapp "store-server/internal/application/activation"
	reconciliationapp "store-server/internal/application/reconciliation"
	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/attempt"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/product"
	"store-server/internal/domain/provider"

	"github.com/labstack/echo/v4"
)

// ActivationHandler コード引き換え関連ハンドラー
type ActivationHandler struct {
	activationService     *activationapp.ActivationApplicationService
	reconciliationService *reconciliationapp.ReconciliationApplicationService
}

// NewActivationHandler 新しいActivationHandlerを作成
func NewActivationHandler(
	activationService *activationapp.ActivationApplicationService,
	reconciliationService *reconciliationapp.ReconciliationApplicationService,
) *ActivationHandler {
	return &ActivationHandler{
		activationService:     activationService,
		reconciliationService: reconciliationService,
	}
}

// Activate コード引き換えハンドラー
// @Summary 活性化コードを引き換える
// @Description コードを検証し、商品タイプに応じたペイロードを返します
// @Tags activation
// @Accept json
// @Produce json
// @Param request body ActivateRequest true "引き換えリクエスト"
// @Success 200 {object} ActivateResponse "引き換え結果（success=falseの業務エラーを含む）"
// @Failure 429 {object} ActivateResponse "IP一時ブロック中"
// @Router /activate [post]
func (h *ActivationHandler) Activate(c echo.Context) error {
	var reqBody ActivateRequest
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, ActivateResponse{
			Success: false,
			Error:   "invalid request body",
		})
	}
	if reqBody.Code == "" {
		return c.JSON(http.StatusBadRequest, ActivateResponse{
			Success: false,
			Error:   "code is required",
		})
	}

	req := &activationapp.RedeemRequest{
		Code:      reqBody.Code,
		UserToken: reqBody.User,
		UserIP:    c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	resp, err := h.activationService.Redeem(c.Request().Context(), req)
	if err != nil {
		return h.activationFailure(c, err)
	}

	return c.JSON(http.StatusOK, ActivateResponse{
		Success: true,
		Data:    toActivationData(resp),
	})
}

// activationFailure 業務エラーを{success:false, error}形式に変換する
// 引き換えエンドポイントの契約上、呼び出し側は真偽値と文字列以外に依存しない。
// 想定外のエラーだけはミドルウェアに委譲する。
func (h *ActivationHandler) activationFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, attempt.ErrIPBlocked):
		return c.JSON(http.StatusTooManyRequests, ActivateResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, activation_code.ErrCodeNotFound),
		errors.Is(err, activation_code.ErrCodeBlocked),
		errors.Is(err, activation_code.ErrCodeExpired),
		errors.Is(err, activation_code.ErrCodeUsageLimitReached),
		errors.Is(err, activation_code.ErrCodeNotLinkedToProduct),
		errors.Is(err, product.ErrProductInactive):
		return c.JSON(http.StatusOK, ActivateResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, cdk.ErrPoolEmpty):
		return c.JSON(http.StatusOK, ActivateResponse{
			Success: false,
			Error:   "no stock",
		})
	case errors.Is(err, provider.ErrRequestFailed):
		return c.JSON(http.StatusBadGateway, ActivateResponse{
			Success: false,
			Error:   "activation service unavailable, please try again later",
		})
	default:
		return err
	}
}

// TaskStatus タスク状態取得ハンドラー
// @Summary 活性化タスクの状態を取得
// @Description 引き換え時に発行されたタスクIDで活性化の進捗を照合します
// @Tags activation
// @Produce json
// @Param task_id path string true "タスクID"
// @Success 200 {object} TaskStatusResponse "タスクの現在状態"
// @Failure 404 {object} TaskStatusResponse "タスクが見つからない"
// @Router /activate/task/{task_id} [get]
func (h *ActivationHandler) TaskStatus(c echo.Context) error {
	taskID := c.Param("task_id")
	if taskID == "" {
		return c.JSON(http.StatusBadRequest, TaskStatusResponse{
			Success: false,
			Error:   "task_id is required",
		})
	}

	resp, err := h.reconciliationService.CheckTask(c.Request().Context(), taskID)
	if err != nil {
		if errors.Is(err, activation_code.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, TaskStatusResponse{
				Success: false,
				Error:   err.Error(),
			})
		}
		if errors.Is(err, provider.ErrRequestFailed) {
			return c.JSON(http.StatusBadGateway, TaskStatusResponse{
				Success: false,
				Error:   "activation service unavailable, please try again later",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, TaskStatusResponse{
		Success: true,
		Data: &TaskStatusData{
			TaskID:  resp.TaskID,
			Pending: resp.Status == activation_code.CDKStatusPending,
			Success: resp.Status == activation_code.CDKStatusSuccess,
			Message: resp.Message,
			CDK:     resp.CDK,
		},
	})
}

// Usage CDK使用状況取得ハンドラー
// @Summary CDKの使用状況を取得
// @Description 払い出されたCDKがプロバイダー側で使用済みかどうかを照会します
// @Tags activation
// @Produce json
// @Param cdk path string true "CDKコード"
// @Success 200 {object} UsageResponse "使用状況"
// @Failure 502 {object} UsageResponse "プロバイダー疎通エラー"
// @Router /activate/usage/{cdk} [get]
func (h *ActivationHandler) Usage(c echo.Context) error {
	cdkCode := c.Param("cdk")
	if cdkCode == "" {
		return c.JSON(http.StatusBadRequest, UsageResponse{
			Success: false,
			Error:   "cdk is required",
		})
	}

	resp, err := h.reconciliationService.CheckUsage(c.Request().Context(), cdkCode)
	if err != nil {
		if errors.Is(err, provider.ErrRequestFailed) {
			return c.JSON(http.StatusBadGateway, UsageResponse{
				Success: false,
				Error:   "activation service unavailable, please try again later",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, UsageResponse{
		Success: true,
		Data: &UsageData{
			CDK:        resp.CDK,
			Used:       resp.Used,
			AppName:    resp.AppName,
			User:       resp.User,
			RedeemTime: resp.RedeemTime,
		},
	})
}

// toActivationData アプリケーション層のペイロードからレスポンスを組み立てる
func toActivationData(resp *activationapp.RedeemResponse) *ActivationData {
	payload := resp.Payload
	data := &ActivationData{
		Code:        resp.Code,
		UsageCount:  resp.UsageCount,
		Type:        payload.ProductType.String(),
		ProductID:   payload.ProductID,
		ProductName: payload.ProductName,
		Description: payload.Description,
		Instruction: payload.Instruction,
		TaskID:      payload.TaskID,
		CDK:         payload.CDK,
		Files:       toFileItems(payload.Files),
	}
	if payload.Partner != nil {
		data.Partner = &PartnerSection{
			ProductID:   payload.Partner.ProductID,
			ProductName: payload.Partner.ProductName,
			Instruction: payload.Partner.Instruction,
			Files:       toFileItems(payload.Partner.Files),
		}
	}
	return data
}

func toFileItems(files []*product.ProductFile) []FileItem {
	if len(files) == 0 {
		return nil
	}
	items := make([]FileItem, 0, len(files))
	for _, f := range files {
		items = append(items, FileItem{
			Name:     f.OriginalName(),
			Path:     f.FilePath(),
			MimeType: f.MimeType(),
			Type:     f.FileType(),
		})
	}
	return items
}
