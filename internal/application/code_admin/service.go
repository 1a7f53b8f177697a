package code_admin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/settings"
	otelinfra "store-server/internal/infrastructure/observability/otel"
)

// codeCharset 生成コードに使う文字集合
// 紛らわしい文字（I, L, O, 0, 1）を除外している
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	defaultCodeLength = 12
	maxGenerateCount  = 1000
	// uniqueRetries 衝突時の再生成回数の上限
	uniqueRetries  = 5
	exportPageSize = 500
)

// CodeAdminApplicationService 活性化コード管理アプリケーションサービス
type CodeAdminApplicationService struct {
	codeRepo activation_code.ActivationCodeRepository
	provider settings.Provider
	logger   *otelinfra.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewCodeAdminApplicationService 新しいCodeAdminApplicationServiceを作成
func NewCodeAdminApplicationService(
	codeRepo activation_code.ActivationCodeRepository,
	provider settings.Provider,
	logger *otelinfra.Logger,
) *CodeAdminApplicationService {
	return &CodeAdminApplicationService{
		codeRepo: codeRepo,
		provider: provider,
		logger:   logger,
		tracer:   otel.Tracer("application.code_admin"),
		now:      time.Now,
	}
}

// SetClock 現在時刻の取得関数を差し替える（テスト用）
func (s *CodeAdminApplicationService) SetClock(now func() time.Time) {
	s.now = now
}

// Generate 指定商品の活性化コードを一括生成する
// 有効期限日数が未指定(0)の場合は設定ストアの既定値を使う。
// 使用上限0は無制限コードを生成する。
func (s *CodeAdminApplicationService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CodeAdminApplicationService.Generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("code.product_id", req.ProductID),
		attribute.Int("code.count", req.Count),
	)

	if req.ProductID == "" {
		return nil, s.fail(span, errors.New("product id is required"))
	}
	if req.Count <= 0 || req.Count > maxGenerateCount {
		return nil, s.fail(span, fmt.Errorf("count must be between 1 and %d", maxGenerateCount))
	}
	if req.UsageLimit < 0 {
		return nil, s.fail(span, errors.New("usage limit must not be negative"))
	}

	length := req.Length
	if length <= 0 {
		length = defaultCodeLength
	}
	prefix := strings.ToUpper(strings.TrimSpace(req.Prefix))

	expiresInDays := req.ExpiresInDays
	if expiresInDays <= 0 {
		expiresInDays = s.provider.GetInt(ctx, settings.KeyDefaultExpirationDays, settings.DefaultExpirationDays)
	}
	expiresAt := s.now().AddDate(0, 0, expiresInDays)

	codes := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		code, err := s.uniqueCode(ctx, prefix, length)
		if err != nil {
			return nil, s.fail(span, err)
		}

		expiry := expiresAt
		ac, err := activation_code.NewActivationCode(
			uuid.NewString(), code, req.ProductID, req.CodeType, req.UsageLimit, &expiry, nil)
		if err != nil {
			return nil, s.fail(span, err)
		}
		if err := s.codeRepo.Create(ctx, ac); err != nil {
			return nil, s.fail(span, err)
		}
		codes = append(codes, code)
	}

	s.logger.Info(ctx, "活性化コードを生成しました", map[string]interface{}{
		"product_id": req.ProductID,
		"count":      len(codes),
	})
	return &GenerateResponse{Codes: codes}, nil
}

// uniqueCode 既存コードと衝突しないランダムコードを生成する
func (s *CodeAdminApplicationService) uniqueCode(ctx context.Context, prefix string, length int) (string, error) {
	for attempt := 0; attempt < uniqueRetries; attempt++ {
		code, err := randomCode(prefix, length)
		if err != nil {
			return "", err
		}
		exists, err := s.codeRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique code")
}

// randomCode 暗号論的乱数でコード本体を生成する
func randomCode(prefix string, length int) (string, error) {
	var b strings.Builder
	b.Grow(len(prefix) + length)
	b.WriteString(prefix)

	max := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b.WriteByte(codeCharset[n.Int64()])
	}
	return b.String(), nil
}

// Import CSV由来の行からコードを取り込む
// 重複・不正な行は行ごとのエラーとして蓄積し、残りの取り込みは継続する。
func (s *CodeAdminApplicationService) Import(ctx context.Context, req *ImportCodesRequest) (*ImportCodesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CodeAdminApplicationService.Import")
	defer span.End()

	span.SetAttributes(attribute.Int("code.rows", len(req.Rows)))

	resp := &ImportCodesResponse{}
	for i, row := range req.Rows {
		code := activation_code.Normalize(row.Code)
		if code == "" {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: empty code", i+1))
			continue
		}

		exists, err := s.codeRepo.ExistsByCode(ctx, code)
		if err != nil {
			return nil, s.fail(span, err)
		}
		if exists {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: code %s already exists", i+1, code))
			continue
		}

		ac, err := activation_code.NewActivationCode(
			uuid.NewString(), code, row.ProductID, row.CodeType, row.UsageLimit, row.ExpiresAt, nil)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if err := s.codeRepo.Create(ctx, ac); err != nil {
			if errors.Is(err, activation_code.ErrCodeAlreadyExists) {
				resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: code %s already exists", i+1, code))
				continue
			}
			return nil, s.fail(span, err)
		}
		resp.Imported++
	}

	s.logger.Info(ctx, "活性化コードを取り込みました", map[string]interface{}{
		"imported": resp.Imported,
		"errors":   len(resp.Errors),
	})
	return resp, nil
}

// Export 条件に合うコードの一覧を出力する
// 作成日時の降順で全件を返す（内部でページングする）。
func (s *CodeAdminApplicationService) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CodeAdminApplicationService.Export")
	defer span.End()

	span.SetAttributes(
		attribute.String("code.product_id", req.ProductID),
		attribute.String("code.status", req.Status),
	)

	resp := &ExportResponse{}
	for offset := 0; ; offset += exportPageSize {
		codes, total, err := s.codeRepo.FindAll(ctx, req.ProductID, req.Status, exportPageSize, offset)
		if err != nil {
			return nil, s.fail(span, err)
		}
		resp.Total = total
		for _, ac := range codes {
			resp.Codes = append(resp.Codes, &ExportedCode{
				ID:          ac.ID(),
				Code:        ac.Code(),
				ProductID:   ac.ProductID(),
				Status:      ac.Status().String(),
				UsageLimit:  ac.UsageLimit(),
				UsageCount:  ac.UsageCount(),
				CodeType:    ac.CodeType(),
				ExpiresAt:   ac.ExpiresAt(),
				ActivatedAt: ac.ActivatedAt(),
				CreatedAt:   ac.CreatedAt(),
			})
		}
		if len(codes) < exportPageSize || len(resp.Codes) >= total {
			break
		}
	}

	return resp, nil
}

// Block コードをブロックする
func (s *CodeAdminApplicationService) Block(ctx context.Context, codeID string) error {
	ctx, span := s.tracer.Start(ctx, "CodeAdminApplicationService.Block")
	defer span.End()

	span.SetAttributes(attribute.String("code.id", codeID))

	ac, err := s.codeRepo.FindByID(ctx, codeID)
	if err != nil {
		return s.fail(span, err)
	}

	ac.Block()
	if err := s.codeRepo.Update(ctx, ac); err != nil {
		return s.fail(span, err)
	}

	s.logger.Info(ctx, "コードをブロックしました", map[string]interface{}{"code_id": codeID})
	return nil
}

// Unblock コードのブロックを解除する
// 使用実績があればused、なければactiveに戻す。
func (s *CodeAdminApplicationService) Unblock(ctx context.Context, codeID string) error {
	ctx, span := s.tracer.Start(ctx, "CodeAdminApplicationService.Unblock")
	defer span.End()

	span.SetAttributes(attribute.String("code.id", codeID))

	ac, err := s.codeRepo.FindByID(ctx, codeID)
	if err != nil {
		return s.fail(span, err)
	}

	ac.Unblock()
	if err := s.codeRepo.Update(ctx, ac); err != nil {
		return s.fail(span, err)
	}

	s.logger.Info(ctx, "コードのブロックを解除しました", map[string]interface{}{"code_id": codeID})
	return nil
}

// fail スパンへエラーを記録して返す
func (s *CodeAdminApplicationService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}
