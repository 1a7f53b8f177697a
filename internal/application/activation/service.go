package activation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/attempt"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/product"
	"store-server/internal/domain/provider"
	"store-server/internal/domain/service"
	otelinfra "store-server/internal/infrastructure/observability/otel"
)

// metadataKeyPartnerProduct コードメタデータでパートナー商品を参照するキー
const metadataKeyPartnerProduct = "partner_product_id"

// ActivationApplicationService コード引き換えアプリケーションサービス
type ActivationApplicationService struct {
	codeRepo    activation_code.ActivationCodeRepository
	productRepo product.ProductRepository
	tokenRepo   cdk.TokenRepository
	client      provider.Client
	guard       *service.AbuseGuard
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer

	// releaseOnSubmitFailure 送信失敗時にトークンをプールへ戻すかどうか
	// 既定はfalse（失敗してもトークンは管理者操作でのみ回収される）
	releaseOnSubmitFailure bool
	now                    func() time.Time
}

// NewActivationApplicationService 新しいActivationApplicationServiceを作成
func NewActivationApplicationService(
	codeRepo activation_code.ActivationCodeRepository,
	productRepo product.ProductRepository,
	tokenRepo cdk.TokenRepository,
	client provider.Client,
	guard *service.AbuseGuard,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	releaseOnSubmitFailure bool,
) *ActivationApplicationService {
	return &ActivationApplicationService{
		codeRepo:               codeRepo,
		productRepo:            productRepo,
		tokenRepo:              tokenRepo,
		client:                 client,
		guard:                  guard,
		logger:                 logger,
		metrics:                metrics,
		tracer:                 otel.Tracer("activation-service"),
		releaseOnSubmitFailure: releaseOnSubmitFailure,
		now:                    time.Now,
	}
}

// SetClock 現在時刻の取得関数を差し替える（テスト用）
func (s *ActivationApplicationService) SetClock(now func() time.Time) {
	s.now = now
}

// Redeem コードを引き換える
// ガード判定 → コード検証 → 商品解決 → 商品タイプごとの分岐の順で処理し、
// ビジネスルール違反はドメインエラーとして返す（例外的な失敗とは区別される）。
func (s *ActivationApplicationService) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ActivationApplicationService.Redeem")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_ip", req.UserIP),
	)

	s.logger.Info(ctx, "Redeeming activation code", map[string]interface{}{
		"user_ip": req.UserIP,
	})

	// ブルートフォースガード
	decision, err := s.guard.CheckBlocked(ctx, req.UserIP)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check guard: %w", err)
	}
	if !decision.Allowed {
		s.metrics.RecordGuardBlock(ctx, req.UserIP)
		span.SetStatus(otelcodes.Error, attempt.ErrIPBlocked.Error())
		return nil, attempt.ErrIPBlocked
	}

	// コードの正規化と取得
	normalized := activation_code.Normalize(req.Code)
	span.SetAttributes(attribute.String("code", normalized))

	ac, err := s.codeRepo.FindByCode(ctx, normalized)
	if err != nil {
		if err == activation_code.ErrCodeNotFound {
			return nil, s.failRedemption(ctx, span, req.UserIP, err)
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find activation code: %w", err)
	}

	now := s.now()

	// 有効期限切れはステータスを書き戻してから拒否する
	if !ac.Status().IsBlocked() && ac.IsExpired(now) {
		ac.MarkExpired()
		if err := s.codeRepo.Update(ctx, ac); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to mark code expired: %w", err)
		}
		return nil, s.failRedemption(ctx, span, req.UserIP, activation_code.ErrCodeExpired)
	}

	if err := ac.Validate(now); err != nil {
		return nil, s.failRedemption(ctx, span, req.UserIP, err)
	}

	// 商品の解決
	p, err := s.productRepo.FindByID(ctx, ac.ProductID())
	if err != nil {
		if err == product.ErrProductNotFound {
			return nil, s.failRedemption(ctx, span, req.UserIP, activation_code.ErrCodeNotLinkedToProduct)
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if !p.Active() {
		return nil, s.failRedemption(ctx, span, req.UserIP, product.ErrProductInactive)
	}

	// 説明文の解決（失敗しない）
	instruction := product.ApplyMetadata(p.ResolveInstruction(ac.CodeType()), ac.Metadata())

	var payload *product.Payload
	if p.Type().RequiresCDK() {
		payload, err = s.redeemWithToken(ctx, span, req, ac, p, instruction, now)
		if err != nil {
			return nil, err
		}
	} else {
		payload = product.NewPlainContentPayload(p, instruction)
		if err := s.commitRedemption(ctx, span, req, ac, now); err != nil {
			return nil, err
		}
	}

	// パートナー商品の解決（失敗した場合はセクションを省略する）
	payload.Partner = s.resolvePartner(ctx, ac)

	s.metrics.RecordActivation(ctx, ac.CodeType(), "success")
	s.logger.Info(ctx, "Activation code redeemed", map[string]interface{}{
		"code":        ac.Code(),
		"product_id":  p.ID(),
		"usage_count": ac.UsageCount(),
	})
	span.SetStatus(otelcodes.Ok, "code redeemed")

	return &RedeemResponse{
		Code:       ac.Code(),
		UsageCount: ac.UsageCount(),
		Payload:    payload,
	}, nil
}

// redeemWithToken サブスクリプション商品の引き換え
// トークン確保 → リモート送信 → コード更新の順で行う。確保が先に
// 永続化されるため、途中でクラッシュしてもトークンが二重割り当てされる
// ことはない。
func (s *ActivationApplicationService) redeemWithToken(
	ctx context.Context,
	span trace.Span,
	req *RedeemRequest,
	ac *activation_code.ActivationCode,
	p *product.Product,
	instruction string,
	now time.Time,
) (*product.Payload, error) {
	token, err := s.tokenRepo.Allocate(ctx, p.GPTType(), ac.Code())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to allocate cdk token: %w", err)
	}
	if token == nil {
		// 在庫切れはビジネスルール違反であり、コードは消費されない
		s.metrics.RecordActivation(ctx, ac.CodeType(), "no_stock")
		return nil, s.failRedemption(ctx, span, req.UserIP, cdk.ErrPoolEmpty)
	}

	s.metrics.RecordTokenAllocation(ctx, p.GPTType())

	taskID, err := s.client.Outstock(ctx, token.CDK(), req.UserToken)
	if err != nil {
		// 送信失敗をコードに記録する。トークンは既定では回収しない
		ac.ApplyTaskResult(false, false, err.Error(), token.CDK())
		if updateErr := s.codeRepo.Update(ctx, ac); updateErr != nil {
			s.logger.Error(ctx, "Failed to record submit failure", updateErr, map[string]interface{}{
				"code": ac.Code(),
			})
		}
		if s.releaseOnSubmitFailure {
			token.SetStatus(cdk.TokenStatusAvailable)
			token.SetAllocation("", nil, nil)
			if saveErr := s.tokenRepo.Save(ctx, token); saveErr != nil {
				s.logger.Error(ctx, "Failed to release cdk token", saveErr, map[string]interface{}{
					"cdk": token.CDK(),
				})
			}
		}
		s.metrics.RecordActivation(ctx, ac.CodeType(), "submit_failed")
		return nil, s.failRedemption(ctx, span, req.UserIP, err)
	}

	ac.AttachCDK(token.CDK(), taskID)
	if err := s.commitRedemption(ctx, span, req, ac, now); err != nil {
		return nil, err
	}

	return product.NewTokenActivationPayload(p, instruction, taskID, token.CDK()), nil
}

// commitRedemption 引き換えの成功を永続化する
// 使用回数の加算・活性化ログの追記・ガード成功記録をこの順で行う。
// 加算は保存済みの行に対する条件付きUPDATEなので、同じコードを
// 同時に引き換えても上限を超えて成功することはない
func (s *ActivationApplicationService) commitRedemption(
	ctx context.Context,
	span trace.Span,
	req *RedeemRequest,
	ac *activation_code.ActivationCode,
	now time.Time,
) error {
	if err := ac.Redeem(now, req.UserIP); err != nil {
		return s.failRedemption(ctx, span, req.UserIP, err)
	}

	if err := s.codeRepo.CommitRedemption(ctx, ac); err != nil {
		if errors.Is(err, activation_code.ErrCodeUsageLimitReached) {
			return s.failRedemption(ctx, span, req.UserIP, err)
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to commit redemption: %w", err)
	}

	log := activation_code.NewActivationLog(uuid.NewString(), ac.ID(), req.UserIP, req.UserAgent)
	if err := s.codeRepo.SaveLog(ctx, log); err != nil {
		// ログの追記失敗は引き換え自体を巻き戻さない
		s.logger.Error(ctx, "Failed to save activation log", err, map[string]interface{}{
			"code": ac.Code(),
		})
	}

	if err := s.guard.RecordSuccess(ctx, req.UserIP); err != nil {
		s.logger.Error(ctx, "Failed to record guard success", err, map[string]interface{}{
			"user_ip": req.UserIP,
		})
	}

	return nil
}

// failRedemption ビジネスルール違反をガードに記録してエラーを返す
func (s *ActivationApplicationService) failRedemption(ctx context.Context, span trace.Span, ip string, cause error) error {
	if err := s.guard.RecordFailure(ctx, ip); err != nil {
		s.logger.Error(ctx, "Failed to record guard failure", err, map[string]interface{}{
			"user_ip": ip,
		})
	}
	span.SetStatus(otelcodes.Error, cause.Error())
	return cause
}

// resolvePartner コードメタデータからパートナー商品を解決する
// メタデータに参照がない・解決に失敗した場合はnilを返す
func (s *ActivationApplicationService) resolvePartner(ctx context.Context, ac *activation_code.ActivationCode) *product.PartnerSection {
	metadata := ac.Metadata()
	if metadata == nil {
		return nil
	}
	partnerID, ok := metadata[metadataKeyPartnerProduct].(string)
	if !ok || partnerID == "" {
		return nil
	}

	partner, err := s.productRepo.FindByID(ctx, partnerID)
	if err != nil {
		s.logger.Warn(ctx, "Failed to resolve partner product", map[string]interface{}{
			"partner_product_id": partnerID,
			"error":              err.Error(),
		})
		return nil
	}

	return &product.PartnerSection{
		ProductID:   partner.ID(),
		ProductName: partner.Name(),
		Instruction: product.ApplyMetadata(partner.ResolveInstruction(ac.CodeType()), metadata),
		Files:       partner.Files(),
	}
}
