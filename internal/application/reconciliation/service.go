package reconciliation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/activation_code"
	"store-server/internal/domain/cdk"
	"store-server/internal/domain/provider"
	otelinfra "store-server/internal/infrastructure/observability/otel"
)

// ReconciliationApplicationService 活性化タスク照合アプリケーションサービス
// 引き換え時に開始されたサードパーティタスクの結果をポーリングし、
// コードとトークンプールに書き戻す。
type ReconciliationApplicationService struct {
	codeRepo  activation_code.ActivationCodeRepository
	tokenRepo cdk.TokenRepository
	client    provider.Client
	logger    *otelinfra.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewReconciliationApplicationService 新しいReconciliationApplicationServiceを作成
func NewReconciliationApplicationService(
	codeRepo activation_code.ActivationCodeRepository,
	tokenRepo cdk.TokenRepository,
	client provider.Client,
	logger *otelinfra.Logger,
) *ReconciliationApplicationService {
	return &ReconciliationApplicationService{
		codeRepo:  codeRepo,
		tokenRepo: tokenRepo,
		client:    client,
		logger:    logger,
		tracer:    otel.Tracer("application.reconciliation"),
		now:       time.Now,
	}
}

// SetClock 現在時刻の取得関数を差し替える（テスト用）
func (s *ReconciliationApplicationService) SetClock(now func() time.Time) {
	s.now = now
}

// CheckTask タスクIDでサードパーティタスクの状態を照合する
// 何度呼んでも安全:
//   - 既にsuccessとして記録済みのタスクはプロバイダーへ問い合わせず記録を返す
//     （トークンがpendingのまま残っていれば遷移をやり直す）
//   - それ以外は最新状態を取得してコードに書き戻し、
//     終了状態であれば対応するトークンをused/failedへ遷移させる
func (s *ReconciliationApplicationService) CheckTask(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReconciliationApplicationService.CheckTask")
	defer span.End()

	span.SetAttributes(attribute.String("task.id", taskID))

	code, err := s.codeRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if code.CDKStatus() == activation_code.CDKStatusSuccess {
		// 前回のポーリングでトークンの書き込みだけ失敗している
		// 可能性があるため、記録を返す前に遷移をやり直す
		s.settleToken(ctx, code, true)
		return s.toResponse(taskID, code), nil
	}

	result, err := s.client.TaskStatus(ctx, taskID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	code.ApplyTaskResult(result.Pending, result.Success, result.Message, result.CDK)
	if err := s.codeRepo.Update(ctx, code); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if !result.Pending {
		s.settleToken(ctx, code, result.Success)
	}

	return s.toResponse(taskID, code), nil
}

// CheckUsage CDKの使用状況をプロバイダーへ問い合わせる
// ローカルの状態には一切書き込まず、プロバイダーの応答をそのまま返す。
func (s *ReconciliationApplicationService) CheckUsage(ctx context.Context, cdkCode string) (*UsageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReconciliationApplicationService.CheckUsage")
	defer span.End()

	span.SetAttributes(attribute.String("cdk.code", cdkCode))

	result, err := s.client.CheckUsage(ctx, cdkCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return &UsageResponse{
		CDK:        result.Code,
		Used:       result.Used,
		AppName:    result.AppName,
		User:       result.User,
		RedeemTime: result.RedeemTime,
	}, nil
}

// settleToken 終了状態のタスクに対応するトークンをused/failedへ遷移させる
// 失敗してもタスク照合自体は成功として扱う（次回のポーリングで再適用される）
func (s *ReconciliationApplicationService) settleToken(ctx context.Context, code *activation_code.ActivationCode, success bool) {
	if code.CDKCode() == "" {
		return
	}

	token, err := s.tokenRepo.FindByCDK(ctx, code.CDKCode())
	if err != nil {
		s.logger.Warn(ctx, "トークンの取得に失敗しました", map[string]interface{}{
			"cdk":   code.CDKCode(),
			"error": err.Error(),
		})
		return
	}

	// 遷移済みのトークンには書き込まない
	if token.Status() != cdk.TokenStatusPending {
		return
	}

	now := s.now()
	if success {
		token.MarkUsed(now)
	} else {
		token.MarkFailed(now)
	}

	if err := s.tokenRepo.Save(ctx, token); err != nil {
		s.logger.Warn(ctx, "トークンの状態更新に失敗しました", map[string]interface{}{
			"cdk":   code.CDKCode(),
			"error": err.Error(),
		})
	}
}

func (s *ReconciliationApplicationService) toResponse(taskID string, code *activation_code.ActivationCode) *TaskStatusResponse {
	return &TaskStatusResponse{
		TaskID:  taskID,
		Code:    code.Code(),
		CDK:     code.CDKCode(),
		Status:  code.CDKStatus(),
		Message: code.CDKMessage(),
	}
}
