package handler

import (
	"net/http"

	poolapp "store-server/internal/application/cdk_pool"

	"github.com/labstack/echo/v4"
)

// AdminCDKHandler CDKトークンプール管理ハンドラー
type AdminCDKHandler struct {
	poolService *poolapp.CDKPoolApplicationService
}

// NewAdminCDKHandler 新しいAdminCDKHandlerを作成
func NewAdminCDKHandler(poolService *poolapp.CDKPoolApplicationService) *AdminCDKHandler {
	return &AdminCDKHandler{
		poolService: poolService,
	}
}

// ImportCDKs CDKトークン取り込みハンドラー
// @Summary CDKトークンをプールへ一括取り込み
// @Description 指定カテゴリへトークンを取り込み、行ごとの結果を返します
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ImportCDKsRequest true "取り込みリクエスト"
// @Success 200 {object} ImportCDKsResponse "取り込み結果"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /admin/cdks/import [post]
func (h *AdminCDKHandler) ImportCDKs(c echo.Context) error {
	var reqBody ImportCDKsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if len(reqBody.Tokens) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "tokens are required")
	}

	resp, err := h.poolService.Import(c.Request().Context(), &poolapp.ImportRequest{
		Category: reqBody.Category,
		CDKs:     reqBody.Tokens,
		Verify:   reqBody.Verify,
	})
	if err != nil {
		return err
	}

	errs := resp.Errors
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(http.StatusOK, ImportCDKsResponse{
		Imported: resp.Imported,
		Errors:   errs,
	})
}

// CDKStats CDK在庫統計ハンドラー
// @Summary カテゴリごとの在庫数を取得
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CDKStatsResponse "在庫統計"
// @Router /admin/cdks/stats [get]
func (h *AdminCDKHandler) CDKStats(c echo.Context) error {
	resp, err := h.poolService.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CDKStatsResponse{
		Available: resp.Available,
	})
}
