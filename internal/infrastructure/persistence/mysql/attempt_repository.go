package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/attempt"
)

// AttemptRepository MySQL実装のAttemptRepository
type AttemptRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewAttemptRepository 新しいAttemptRepositoryを作成
func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{
		db:     db,
		tracer: otel.Tracer("attempt-repository"),
	}
}

// FindLatestLive 指定IPの「生きている」最新の試行記録を取得
// ブロック解除日時が未来、またはウィンドウ内に作成された記録が対象。
// 該当がなければ (nil, nil) を返す。
func (r *AttemptRepository) FindLatestLive(ctx context.Context, ip string, windowStart time.Time) (*attempt.Attempt, error) {
	ctx, span := r.tracer.Start(ctx, "AttemptRepository.FindLatestLive")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.ip_address", ip),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_attempts"),
	)

	query := `
		SELECT id, ip_address, is_success, attempt_count, blocked_until, created_at
		FROM activation_attempts
		WHERE ip_address = ?
		  AND (blocked_until > ? OR created_at >= ?)
		ORDER BY created_at DESC
		LIMIT 1
	`

	now := time.Now()

	var id, ipAddress string
	var isSuccess bool
	var attemptCount int
	var blockedUntil sql.NullTime
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, query, ip, now, windowStart).Scan(
		&id,
		&ipAddress,
		&isSuccess,
		&attemptCount,
		&blockedUntil,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "no live attempt")
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find attempt: %w", err)
	}

	a := attempt.NewAttempt(id, ipAddress, isSuccess, createdAt)
	a.SetAttemptCount(attemptCount)
	if blockedUntil.Valid {
		t := blockedUntil.Time
		a.SetBlockedUntil(&t)
	}

	span.SetAttributes(attribute.Int("db.attempt_count", attemptCount))
	span.SetStatus(otelcodes.Ok, "attempt found")
	return a, nil
}

// CountFailures ウィンドウ内の失敗試行回数を取得
func (r *AttemptRepository) CountFailures(ctx context.Context, ip string, windowStart time.Time) (int, error) {
	ctx, span := r.tracer.Start(ctx, "AttemptRepository.CountFailures")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.ip_address", ip),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_attempts"),
	)

	query := `
		SELECT COALESCE(SUM(attempt_count), 0)
		FROM activation_attempts
		WHERE ip_address = ? AND is_success = FALSE AND created_at >= ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, ip, windowStart).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to count failures: %w", err)
	}

	span.SetAttributes(attribute.Int("db.failure_count", count))
	span.SetStatus(otelcodes.Ok, "failures counted")
	return count, nil
}

// BlockIP 指定IPの未ブロック記録にブロック解除日時を設定
func (r *AttemptRepository) BlockIP(ctx context.Context, ip string, blockedUntil time.Time) error {
	ctx, span := r.tracer.Start(ctx, "AttemptRepository.BlockIP")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.ip_address", ip),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "activation_attempts"),
	)

	query := `
		UPDATE activation_attempts
		SET blocked_until = ?
		WHERE ip_address = ? AND blocked_until IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, blockedUntil, ip)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to block ip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "ip blocked")
	return nil
}

// Save 試行記録を作成または更新
func (r *AttemptRepository) Save(ctx context.Context, a *attempt.Attempt) error {
	ctx, span := r.tracer.Start(ctx, "AttemptRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.attempt_id", a.ID()),
		attribute.String("db.ip_address", a.IPAddress()),
		attribute.Int("db.attempt_count", a.AttemptCount()),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.table", "activation_attempts"),
	)

	query := `
		INSERT INTO activation_attempts (
			id, ip_address, is_success, attempt_count, blocked_until, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			is_success = VALUES(is_success),
			attempt_count = VALUES(attempt_count),
			blocked_until = VALUES(blocked_until)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID(),
		a.IPAddress(),
		a.IsSuccess(),
		a.AttemptCount(),
		nullableTime(a.BlockedUntil()),
		a.CreatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save attempt: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "attempt saved")
	return nil
}
