package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"store-server/internal/domain/product"
)

// ProductRepository MySQL実装のProductRepository
type ProductRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewProductRepository 新しいProductRepositoryを作成
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{
		db:     db,
		tracer: otel.Tracer("product-repository"),
	}
}

// FindByID 商品IDで商品を取得
// 商品ファイルと説明テンプレートも読み込む
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.product_id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "products"),
	)

	query := `
		SELECT
			id, name, description, short_description,
			product_type, gpt_type, active
		FROM products
		WHERE id = ?
	`

	var dbID, name string
	var description, shortDescription, gptType sql.NullString
	var dbProductType string
	var active bool

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dbID,
		&name,
		&description,
		&shortDescription,
		&dbProductType,
		&gptType,
		&active,
	)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "product not found")
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	productType, err := product.NewProductType(dbProductType)
	if err != nil {
		return nil, fmt.Errorf("invalid product type: %w", err)
	}

	p, err := product.NewProduct(
		dbID,
		name,
		description.String,
		shortDescription.String,
		productType,
		gptType.String,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid product row: %w", err)
	}
	p.SetActive(active)

	files, err := r.findFiles(ctx, dbID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	p.SetFiles(files)

	templates, err := r.findTemplates(ctx, dbID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	p.SetTemplates(templates)

	span.SetAttributes(
		attribute.String("db.product_type", dbProductType),
		attribute.Int("db.file_count", len(files)),
		attribute.Int("db.template_count", len(templates)),
	)
	span.SetStatus(otelcodes.Ok, "product found")
	return p, nil
}

// findFiles 商品に紐付くファイルを取得
func (r *ProductRepository) findFiles(ctx context.Context, productID string) ([]*product.ProductFile, error) {
	query := `
		SELECT
			file_id, file_name, original_name, file_path,
			mime_type, file_type, sort_order
		FROM product_files
		WHERE product_id = ?
		ORDER BY sort_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product files: %w", err)
	}
	defer rows.Close()

	var files []*product.ProductFile
	for rows.Next() {
		var fileID, fileName, originalName, filePath string
		var mimeType, fileType sql.NullString
		var sortOrder int
		if err := rows.Scan(&fileID, &fileName, &originalName, &filePath, &mimeType, &fileType, &sortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan product file: %w", err)
		}
		files = append(files, product.NewProductFile(
			fileID, fileName, originalName, filePath,
			mimeType.String, fileType.String, sortOrder,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product files: %w", err)
	}

	return files, nil
}

// findTemplates 商品に紐付く説明テンプレートを取得
func (r *ProductRepository) findTemplates(ctx context.Context, productID string) ([]*product.InstructionTemplate, error) {
	query := `
		SELECT template_id, code_type, content
		FROM instruction_templates
		WHERE product_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruction templates: %w", err)
	}
	defer rows.Close()

	var templates []*product.InstructionTemplate
	for rows.Next() {
		var templateID, codeType, content string
		if err := rows.Scan(&templateID, &codeType, &content); err != nil {
			return nil, fmt.Errorf("failed to scan instruction template: %w", err)
		}
		templates = append(templates, product.NewInstructionTemplate(templateID, codeType, content))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruction templates: %w", err)
	}

	return templates, nil
}
