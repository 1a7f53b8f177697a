package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/activation_code"
)

// ActivationCodeRepository MySQL実装のActivationCodeRepository
type ActivationCodeRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewActivationCodeRepository 新しいActivationCodeRepositoryを作成
func NewActivationCodeRepository(db *DB) *ActivationCodeRepository {
	return &ActivationCodeRepository{
		db:     db,
		tracer: otel.Tracer("activation-code-repository"),
	}
}

const activationCodeColumns = `
	id, code, product_id, code_type, status,
	usage_limit, usage_count, expires_at, metadata,
	user_ip, activated_at,
	cdk_code, cdk_status, cdk_task_id, cdk_message,
	created_at, updated_at
`

// scanActivationCode 1行分の活性化コードを読み込む
func scanActivationCode(scan func(dest ...interface{}) error) (*activation_code.ActivationCode, error) {
	var id, code string
	var productID, codeType, dbStatus string
	var usageLimit, usageCount int
	var expiresAt, activatedAt sql.NullTime
	var metadataJSON, userIP sql.NullString
	var cdkCode, cdkStatus, cdkTaskID, cdkMessage sql.NullString
	var createdAt, updatedAt time.Time

	err := scan(
		&id,
		&code,
		&productID,
		&codeType,
		&dbStatus,
		&usageLimit,
		&usageCount,
		&expiresAt,
		&metadataJSON,
		&userIP,
		&activatedAt,
		&cdkCode,
		&cdkStatus,
		&cdkTaskID,
		&cdkMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	status, err := activation_code.NewCodeStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid code status: %w", err)
	}

	var metadata map[string]interface{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	var expiry *time.Time
	if expiresAt.Valid {
		t := expiresAt.Time
		expiry = &t
	}

	ac, err := activation_code.NewActivationCode(
		id,
		code,
		productID,
		codeType,
		usageLimit,
		expiry,
		metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid activation code row: %w", err)
	}

	ac.SetStatus(status)
	ac.SetUsageCount(usageCount)

	var stamp *time.Time
	if activatedAt.Valid {
		t := activatedAt.Time
		stamp = &t
	}
	ac.SetRedemptionStamp(userIP.String, stamp)
	ac.SetCDKState(cdkCode.String, cdkStatus.String, cdkTaskID.String, cdkMessage.String)

	return ac, nil
}

// FindByCode 正規化済みコードで活性化コードを取得
func (r *ActivationCodeRepository) FindByCode(ctx context.Context, code string) (*activation_code.ActivationCode, error) {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.FindByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `SELECT ` + activationCodeColumns + ` FROM activation_codes WHERE code = ?`

	row := r.db.QueryRowContext(ctx, query, code)
	ac, err := scanActivationCode(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "activation code not found")
		return nil, activation_code.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find activation code: %w", err)
	}

	span.SetAttributes(
		attribute.String("db.code_type", ac.CodeType()),
		attribute.String("db.status", ac.Status().String()),
	)
	span.SetStatus(otelcodes.Ok, "activation code found")
	return ac, nil
}

// FindByID コードIDで活性化コードを取得
func (r *ActivationCodeRepository) FindByID(ctx context.Context, id string) (*activation_code.ActivationCode, error) {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `SELECT ` + activationCodeColumns + ` FROM activation_codes WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	ac, err := scanActivationCode(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "activation code not found")
		return nil, activation_code.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find activation code: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "activation code found")
	return ac, nil
}

// FindByTaskID サードパーティタスクIDで活性化コードを取得
func (r *ActivationCodeRepository) FindByTaskID(ctx context.Context, taskID string) (*activation_code.ActivationCode, error) {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.FindByTaskID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.cdk_task_id", taskID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `SELECT ` + activationCodeColumns + ` FROM activation_codes WHERE cdk_task_id = ?`

	row := r.db.QueryRowContext(ctx, query, taskID)
	ac, err := scanActivationCode(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "task not found")
		return nil, activation_code.ErrTaskNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find activation code by task: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "activation code found")
	return ac, nil
}

// FindAll 活性化コードの一覧を取得
// productID・statusは空文字で絞り込みを無効化する
func (r *ActivationCodeRepository) FindAll(ctx context.Context, productID, status string, limit, offset int) ([]*activation_code.ActivationCode, int, error) {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.product_id", productID),
		attribute.String("db.status", status),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_codes"),
	)

	where := " WHERE 1=1"
	args := []interface{}{}
	if productID != "" {
		where += " AND product_id = ?"
		args = append(args, productID)
	}
	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM activation_codes` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count activation codes: %w", err)
	}

	query := `SELECT ` + activationCodeColumns + ` FROM activation_codes` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list activation codes: %w", err)
	}
	defer rows.Close()

	var codes []*activation_code.ActivationCode
	for rows.Next() {
		ac, err := scanActivationCode(rows.Scan)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan activation code: %w", err)
		}
		codes = append(codes, ac)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to iterate activation codes: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", len(codes)))
	span.SetStatus(otelcodes.Ok, "activation codes listed")
	return codes, total, nil
}

// ExistsByCode コードが既に存在するかチェック
func (r *ActivationCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.ExistsByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `SELECT COUNT(*) FROM activation_codes WHERE code = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check activation code: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", count))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("code exists: %v", count > 0))
	return count > 0, nil
}

// Create 活性化コードを作成
func (r *ActivationCodeRepository) Create(ctx context.Context, ac *activation_code.ActivationCode) error {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.id", ac.ID()),
		attribute.String("db.code", ac.Code()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "activation_codes"),
	)

	metadataJSON, err := marshalMetadata(ac.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `
		INSERT INTO activation_codes (
			id, code, product_id, code_type, status,
			usage_limit, usage_count, expires_at, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err = r.db.ExecContext(ctx, query,
		ac.ID(),
		ac.Code(),
		ac.ProductID(),
		ac.CodeType(),
		ac.Status().String(),
		ac.UsageLimit(),
		ac.UsageCount(),
		nullableTime(ac.ExpiresAt()),
		metadataJSON,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			span.SetStatus(otelcodes.Ok, "activation code already exists")
			return activation_code.ErrCodeAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create activation code: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "activation code created")
	return nil
}

// Update 活性化コードを更新
func (r *ActivationCodeRepository) Update(ctx context.Context, ac *activation_code.ActivationCode) error {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", ac.Code()),
		attribute.String("db.status", ac.Status().String()),
		attribute.Int("db.usage_count", ac.UsageCount()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `
		UPDATE activation_codes
		SET
			status = ?,
			usage_count = ?,
			user_ip = ?,
			activated_at = ?,
			cdk_code = ?,
			cdk_status = ?,
			cdk_task_id = ?,
			cdk_message = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		ac.Status().String(),
		ac.UsageCount(),
		nullableString(ac.UserIP()),
		nullableTime(ac.ActivatedAt()),
		nullableString(ac.CDKCode()),
		nullableString(ac.CDKStatus()),
		nullableString(ac.CDKTaskID()),
		nullableString(ac.CDKMessage()),
		ac.Code(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update activation code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "activation code updated")
	return nil
}

// CommitRedemption 引き換えの成功を永続化する
// 使用回数の加算は保存済みの行に対する条件付きUPDATEで行う。
// 同じコードを同時に引き換えた場合、上限を超えた側はWHERE句に
// 一致せず、ErrCodeUsageLimitReachedが返る。
func (r *ActivationCodeRepository) CommitRedemption(ctx context.Context, ac *activation_code.ActivationCode) error {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.CommitRedemption")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", ac.Code()),
		attribute.Int("db.usage_limit", ac.UsageLimit()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "activation_codes"),
	)

	query := `
		UPDATE activation_codes
		SET
			status = ?,
			usage_count = usage_count + 1,
			user_ip = ?,
			activated_at = ?,
			cdk_code = ?,
			cdk_status = ?,
			cdk_task_id = ?,
			cdk_message = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
		  AND status = ?
		  AND (usage_limit = 0 OR usage_count < usage_limit)
	`

	result, err := r.db.ExecContext(ctx, query,
		ac.Status().String(),
		nullableString(ac.UserIP()),
		nullableTime(ac.ActivatedAt()),
		nullableString(ac.CDKCode()),
		nullableString(ac.CDKStatus()),
		nullableString(ac.CDKTaskID()),
		nullableString(ac.CDKMessage()),
		ac.Code(),
		activation_code.CodeStatusActive.String(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to commit redemption: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// 並行する引き換えに先を越された（または同時にブロックされた）
		span.SetStatus(otelcodes.Ok, "usage limit reached")
		return activation_code.ErrCodeUsageLimitReached
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "redemption committed")
	return nil
}

// SaveLog 活性化ログを保存
func (r *ActivationCodeRepository) SaveLog(ctx context.Context, log *activation_code.ActivationLog) error {
	ctx, span := r.tracer.Start(ctx, "ActivationCodeRepository.SaveLog")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.log_id", log.LogID()),
		attribute.String("db.code_id", log.CodeID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "activation_logs"),
	)

	query := `
		INSERT INTO activation_logs (
			log_id, code_id, user_ip, user_agent, activated_at
		) VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.LogID(),
		log.CodeID(),
		log.UserIP(),
		log.UserAgent(),
		log.ActivatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save activation log: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "activation log saved")
	return nil
}

// marshalMetadata メタデータをJSON文字列に変換する（nilはNULL）
func marshalMetadata(metadata map[string]interface{}) (sql.NullString, error) {
	if metadata == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// nullableString 空文字をNULLとして扱う
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableTime nilをNULLとして扱う
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
