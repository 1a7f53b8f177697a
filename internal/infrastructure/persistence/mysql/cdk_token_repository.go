package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/cdk"
)

// CDKTokenRepository MySQL実装のTokenRepository
type CDKTokenRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewCDKTokenRepository 新しいCDKTokenRepositoryを作成
func NewCDKTokenRepository(db *DB) *CDKTokenRepository {
	return &CDKTokenRepository{
		db:     db,
		tracer: otel.Tracer("cdk-token-repository"),
	}
}

// Allocate 指定カテゴリの最も古いavailableトークンを排他的に確保する
// 条件付きUPDATE 1文で行うため、並行する引き換えが同じトークンを
// 受け取ることはない。在庫がない場合は (nil, nil) を返す。
func (r *CDKTokenRepository) Allocate(ctx context.Context, gptType, orderCode string) (*cdk.Token, error) {
	ctx, span := r.tracer.Start(ctx, "CDKTokenRepository.Allocate")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.gpt_type", gptType),
		attribute.String("db.order_code", orderCode),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "cdk_tokens"),
	)

	// 割り当てマーカーで確保した行を後から特定する
	allocationID := uuid.NewString()

	query := `
		UPDATE cdk_tokens
		SET
			status = 'pending',
			order_code = ?,
			allocation_id = ?,
			allocated_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE gpt_type = ? AND status = 'available'
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	result, err := r.db.ExecContext(ctx, query, orderCode, allocationID, gptType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to allocate cdk token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "pool empty")
		return nil, nil
	}

	token, err := r.findByAllocationID(ctx, allocationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("db.token_id", token.ID()))
	span.SetStatus(otelcodes.Ok, "cdk token allocated")
	return token, nil
}

// findByAllocationID 割り当てマーカーでトークンを取得
func (r *CDKTokenRepository) findByAllocationID(ctx context.Context, allocationID string) (*cdk.Token, error) {
	query := `
		SELECT id, cdk, gpt_type, status, order_code, allocated_at, used_at, created_at, updated_at
		FROM cdk_tokens
		WHERE allocation_id = ?
	`

	row := r.db.QueryRowContext(ctx, query, allocationID)
	token, err := scanToken(row.Scan)
	if err == sql.ErrNoRows {
		return nil, cdk.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load allocated token: %w", err)
	}
	return token, nil
}

// scanToken 1行分のトークンを読み込む
func scanToken(scan func(dest ...interface{}) error) (*cdk.Token, error) {
	var id, cdkCode, gptType, dbStatus string
	var orderCode sql.NullString
	var allocatedAt, usedAt sql.NullTime
	var createdAt, updatedAt time.Time

	err := scan(
		&id,
		&cdkCode,
		&gptType,
		&dbStatus,
		&orderCode,
		&allocatedAt,
		&usedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	status, err := cdk.NewTokenStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid token status: %w", err)
	}

	token, err := cdk.NewToken(id, cdkCode, gptType)
	if err != nil {
		return nil, fmt.Errorf("invalid token row: %w", err)
	}
	token.SetStatus(status)

	var allocStamp, usedStamp *time.Time
	if allocatedAt.Valid {
		t := allocatedAt.Time
		allocStamp = &t
	}
	if usedAt.Valid {
		t := usedAt.Time
		usedStamp = &t
	}
	token.SetAllocation(orderCode.String, allocStamp, usedStamp)

	return token, nil
}

// FindByCDK トークン文字列でトークンを取得
func (r *CDKTokenRepository) FindByCDK(ctx context.Context, cdkCode string) (*cdk.Token, error) {
	ctx, span := r.tracer.Start(ctx, "CDKTokenRepository.FindByCDK")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "cdk_tokens"),
	)

	query := `
		SELECT id, cdk, gpt_type, status, order_code, allocated_at, used_at, created_at, updated_at
		FROM cdk_tokens
		WHERE cdk = ?
	`

	row := r.db.QueryRowContext(ctx, query, cdkCode)
	token, err := scanToken(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "token not found")
		return nil, cdk.ErrTokenNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find cdk token: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "token found")
	return token, nil
}

// Save トークンのステータス・割り当て情報を保存
func (r *CDKTokenRepository) Save(ctx context.Context, token *cdk.Token) error {
	ctx, span := r.tracer.Start(ctx, "CDKTokenRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.token_id", token.ID()),
		attribute.String("db.status", token.Status().String()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "cdk_tokens"),
	)

	query := `
		UPDATE cdk_tokens
		SET
			status = ?,
			order_code = ?,
			used_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		token.Status().String(),
		nullableString(token.OrderCode()),
		nullableTime(token.UsedAt()),
		token.ID(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save cdk token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "token not found")
		return cdk.ErrTokenNotFound
	}

	span.SetStatus(otelcodes.Ok, "cdk token saved")
	return nil
}

// Create トークンを新規作成
func (r *CDKTokenRepository) Create(ctx context.Context, token *cdk.Token) error {
	ctx, span := r.tracer.Start(ctx, "CDKTokenRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.token_id", token.ID()),
		attribute.String("db.gpt_type", token.GPTType()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "cdk_tokens"),
	)

	query := `
		INSERT INTO cdk_tokens (
			id, cdk, gpt_type, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ID(),
		token.CDK(),
		token.GPTType(),
		token.Status().String(),
	)
	if err != nil {
		if isDuplicateEntry(err) {
			span.SetStatus(otelcodes.Ok, "token already exists")
			return cdk.ErrTokenAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create cdk token: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "cdk token created")
	return nil
}

// CountAvailable カテゴリごとの在庫数を取得
func (r *CDKTokenRepository) CountAvailable(ctx context.Context) (map[string]int, error) {
	ctx, span := r.tracer.Start(ctx, "CDKTokenRepository.CountAvailable")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "cdk_tokens"),
	)

	query := `
		SELECT gpt_type, COUNT(*)
		FROM cdk_tokens
		WHERE status = 'available'
		GROUP BY gpt_type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to count available tokens: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var gptType string
		var count int
		if err := rows.Scan(&gptType, &count); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan token count: %w", err)
		}
		counts[gptType] = count
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate token counts: %w", err)
	}

	span.SetAttributes(attribute.Int("db.category_count", len(counts)))
	span.SetStatus(otelcodes.Ok, "available tokens counted")
	return counts, nil
}
