package cdk_pool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/cdk"
	"store-server/internal/domain/provider"
	otelinfra "store-server/internal/infrastructure/observability/otel"
)

// CDKPoolApplicationService CDKトークンプール管理アプリケーションサービス
type CDKPoolApplicationService struct {
	tokenRepo      cdk.TokenRepository
	providerClient provider.Client
	logger         *otelinfra.Logger
	metrics        *otelinfra.Metrics
	tracer         trace.Tracer
}

// NewCDKPoolApplicationService 新しいCDKPoolApplicationServiceを作成
func NewCDKPoolApplicationService(
	tokenRepo cdk.TokenRepository,
	providerClient provider.Client,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *CDKPoolApplicationService {
	return &CDKPoolApplicationService{
		tokenRepo:      tokenRepo,
		providerClient: providerClient,
		logger:         logger,
		metrics:        metrics,
		tracer:         otel.Tracer("application.cdk_pool"),
	}
}

// Import CDKトークンをプールへ一括取り込みする
// 空行はスキップし、重複・不正な行は行ごとのエラーとして蓄積する。
// 一部の行が失敗しても残りの取り込みは継続する。
func (s *CDKPoolApplicationService) Import(ctx context.Context, req *ImportRequest) (*ImportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CDKPoolApplicationService.Import")
	defer span.End()

	span.SetAttributes(
		attribute.String("cdk.category", req.Category),
		attribute.Int("cdk.rows", len(req.CDKs)),
		attribute.Bool("cdk.verify", req.Verify),
	)

	if req.Category == "" {
		err := errors.New("category is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	resp := &ImportResponse{}
	for i, raw := range req.CDKs {
		cdkCode := strings.TrimSpace(raw)
		if cdkCode == "" {
			continue
		}

		token, err := cdk.NewToken(uuid.NewString(), cdkCode, req.Category)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		if req.Verify {
			result, err := s.providerClient.CheckCDK(ctx, cdkCode)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: verification failed", i+1))
				continue
			}
			if result.Used {
				resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: cdk already used", i+1))
				continue
			}
		}

		if err := s.tokenRepo.Create(ctx, token); err != nil {
			if errors.Is(err, cdk.ErrTokenAlreadyExists) {
				resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: duplicate cdk", i+1))
				continue
			}
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		resp.Imported++
	}

	s.logger.Info(ctx, "CDKトークンを取り込みました", map[string]interface{}{
		"category": req.Category,
		"imported": resp.Imported,
		"errors":   len(resp.Errors),
	})
	return resp, nil
}

// Stats カテゴリごとの在庫数を取得する
func (s *CDKPoolApplicationService) Stats(ctx context.Context) (*StatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CDKPoolApplicationService.Stats")
	defer span.End()

	counts, err := s.tokenRepo.CountAvailable(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	for gptType, size := range counts {
		s.metrics.RecordTokenPoolSize(ctx, gptType, int64(size))
	}

	return &StatsResponse{Available: counts}, nil
}
