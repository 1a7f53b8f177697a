package handler

import (
	"net/http"
	"time"

	adminapp "store-server/internal/application/code_admin"

	"github.com/labstack/echo/v4"
)

// AdminCodeHandler 活性化コード管理ハンドラー
type AdminCodeHandler struct {
	adminService *adminapp.CodeAdminApplicationService
}

// NewAdminCodeHandler 新しいAdminCodeHandlerを作成
func NewAdminCodeHandler(adminService *adminapp.CodeAdminApplicationService) *AdminCodeHandler {
	return &AdminCodeHandler{
		adminService: adminService,
	}
}

// GenerateCodes コード一括生成ハンドラー
// @Summary 活性化コードを一括生成
// @Description 指定商品の活性化コードを指定件数生成します
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateCodesRequest true "生成リクエスト"
// @Success 200 {object} GenerateCodesResponse "生成されたコード"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /admin/codes/generate [post]
func (h *AdminCodeHandler) GenerateCodes(c echo.Context) error {
	var reqBody GenerateCodesRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}
	if reqBody.Count <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "count must be positive")
	}

	// usage_limit省略時は1回限りのコードを生成する（0は無制限）
	usageLimit := 1
	if reqBody.UsageLimit != nil {
		usageLimit = *reqBody.UsageLimit
	}

	resp, err := h.adminService.Generate(c.Request().Context(), &adminapp.GenerateRequest{
		ProductID:     reqBody.ProductID,
		Count:         reqBody.Count,
		Prefix:        reqBody.Prefix,
		Length:        reqBody.Length,
		UsageLimit:    usageLimit,
		ExpiresInDays: reqBody.ExpiresInDays,
		CodeType:      reqBody.CodeType,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GenerateCodesResponse{
		Codes: resp.Codes,
		Count: len(resp.Codes),
	})
}

// ImportCodes コード取り込みハンドラー
// @Summary 活性化コードを一括取り込み
// @Description CSV由来の行からコードを取り込み、行ごとの結果を返します
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ImportCodesRequest true "取り込みリクエスト"
// @Success 200 {object} ImportCodesResponse "取り込み結果"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /admin/codes/import [post]
func (h *AdminCodeHandler) ImportCodes(c echo.Context) error {
	var reqBody ImportCodesRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(reqBody.Rows) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "rows are required")
	}

	rows := make([]adminapp.ImportRow, 0, len(reqBody.Rows))
	for _, row := range reqBody.Rows {
		usageLimit := 1
		if row.UsageLimit != nil {
			usageLimit = *row.UsageLimit
		}

		var expiresAt *time.Time
		if row.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, row.ExpiresAt)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid expires_at format, expected RFC3339")
			}
			expiresAt = &parsed
		}

		rows = append(rows, adminapp.ImportRow{
			Code:       row.Code,
			ProductID:  row.ProductID,
			UsageLimit: usageLimit,
			ExpiresAt:  expiresAt,
			CodeType:   row.CodeType,
		})
	}

	resp, err := h.adminService.Import(c.Request().Context(), &adminapp.ImportCodesRequest{Rows: rows})
	if err != nil {
		return err
	}

	errs := resp.Errors
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(http.StatusOK, ImportCodesResponse{
		Imported: resp.Imported,
		Errors:   errs,
	})
}

// ExportCodes コード一覧出力ハンドラー
// @Summary 活性化コードの一覧を出力
// @Description 商品ID・ステータスで絞り込んだコード一覧を返します
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param product_id query string false "商品IDで絞り込み"
// @Param status query string false "ステータスで絞り込み" Enums(active,used,blocked,expired)
// @Success 200 {object} ExportCodesResponse "コード一覧"
// @Router /admin/codes/export [get]
func (h *AdminCodeHandler) ExportCodes(c echo.Context) error {
	resp, err := h.adminService.Export(c.Request().Context(), &adminapp.ExportRequest{
		ProductID: c.QueryParam("product_id"),
		Status:    c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	items := make([]ExportedCodeItem, 0, len(resp.Codes))
	for _, code := range resp.Codes {
		item := ExportedCodeItem{
			ID:         code.ID,
			Code:       code.Code,
			ProductID:  code.ProductID,
			Status:     code.Status,
			UsageLimit: code.UsageLimit,
			UsageCount: code.UsageCount,
			CodeType:   code.CodeType,
			CreatedAt:  code.CreatedAt.Format(time.RFC3339),
		}
		if code.ExpiresAt != nil {
			item.ExpiresAt = code.ExpiresAt.Format(time.RFC3339)
		}
		if code.ActivatedAt != nil {
			item.ActivatedAt = code.ActivatedAt.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, ExportCodesResponse{
		Codes: items,
		Total: resp.Total,
	})
}

// BlockCode コードブロックハンドラー
// @Summary 活性化コードをブロック
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "コードID"
// @Success 200 {object} CodeStatusChangeResponse "ブロック成功"
// @Failure 404 {object} ErrorResponse "コードが見つからない"
// @Router /admin/codes/{id}/block [post]
func (h *AdminCodeHandler) BlockCode(c echo.Context) error {
	codeID := c.Param("id")
	if codeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code id is required")
	}

	if err := h.adminService.Block(c.Request().Context(), codeID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CodeStatusChangeResponse{
		Success: true,
		CodeID:  codeID,
	})
}

// UnblockCode コードブロック解除ハンドラー
// @Summary 活性化コードのブロックを解除
// @Description 使用実績に応じてused/activeに戻します
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "コードID"
// @Success 200 {object} CodeStatusChangeResponse "解除成功"
// @Failure 404 {object} ErrorResponse "コードが見つからない"
// @Router /admin/codes/{id}/unblock [post]
func (h *AdminCodeHandler) UnblockCode(c echo.Context) error {
	codeID := c.Param("id")
	if codeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code id is required")
	}

	if err := h.adminService.Unblock(c.Request().Context(), codeID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CodeStatusChangeResponse{
		Success: true,
		CodeID:  codeID,
	})
}
