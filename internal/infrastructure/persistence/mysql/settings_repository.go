package mysql

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SettingsRepository MySQL実装の設定ストアリポジトリ
type SettingsRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewSettingsRepository 新しいSettingsRepositoryを作成
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		tracer: otel.Tracer("settings-repository"),
	}
}

// FindAll すべての設定をキーバリューで取得
func (r *SettingsRepository) FindAll(ctx context.Context) (map[string]string, error) {
	ctx, span := r.tracer.Start(ctx, "SettingsRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "settings"),
	)

	query := `SELECT setting_key, setting_value FROM settings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", len(values)))
	span.SetStatus(otelcodes.Ok, "settings listed")
	return values, nil
}
