package mysql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"store-server/internal/domain/product"
)

func TestProductRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &ProductRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	t.Run("正常系: サブスクリプション商品を取得", func(t *testing.T) {
		productRows := sqlmock.NewRows([]string{
			"id", "name", "description", "short_description",
			"product_type", "gpt_type", "active",
		}).AddRow("prod-1", "ChatGPT Plus 1ヶ月", "説明", "短い説明", "subscription", "plus_1m", true)
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-1").
			WillReturnRows(productRows)

		fileRows := sqlmock.NewRows([]string{
			"file_id", "file_name", "original_name", "file_path",
			"mime_type", "file_type", "sort_order",
		})
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-1").
			WillReturnRows(fileRows)

		templateRows := sqlmock.NewRows([]string{"template_id", "code_type", "content"}).
			AddRow("tmpl-1", "plus_1m", "アカウント: {{account}} でログインしてください")
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-1").
			WillReturnRows(templateRows)

		p, err := repo.FindByID(context.Background(), "prod-1")
		require.NoError(t, err)
		assert.Equal(t, "ChatGPT Plus 1ヶ月", p.Name())
		assert.Equal(t, product.ProductTypeSubscription, p.Type())
		assert.Equal(t, "plus_1m", p.GPTType())
		assert.True(t, p.Active())
		assert.Len(t, p.Templates(), 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("正常系: ファイル付きのデジタル商品を取得", func(t *testing.T) {
		productRows := sqlmock.NewRows([]string{
			"id", "name", "description", "short_description",
			"product_type", "gpt_type", "active",
		}).AddRow("prod-2", "設定ファイル集", "説明", nil, "digital_file", nil, true)
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-2").
			WillReturnRows(productRows)

		fileRows := sqlmock.NewRows([]string{
			"file_id", "file_name", "original_name", "file_path",
			"mime_type", "file_type", "sort_order",
		}).
			AddRow("file-1", "archive.zip", "配布物.zip", "/files/archive.zip", "application/zip", "archive", 1).
			AddRow("file-2", "readme.txt", "readme.txt", "/files/readme.txt", "text/plain", "document", 2)
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-2").
			WillReturnRows(fileRows)

		templateRows := sqlmock.NewRows([]string{"template_id", "code_type", "content"})
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-2").
			WillReturnRows(templateRows)

		p, err := repo.FindByID(context.Background(), "prod-2")
		require.NoError(t, err)
		assert.Equal(t, product.ProductTypeDigitalFile, p.Type())
		assert.Len(t, p.Files(), 2)
		assert.Equal(t, "archive.zip", p.Files()[0].FileName())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: 商品が見つからない", func(t *testing.T) {
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-404").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindByID(context.Background(), "prod-404")
		assert.Equal(t, product.ErrProductNotFound, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: DBエラー", func(t *testing.T) {
		mock.ExpectQuery(`SELECT`).
			WithArgs("prod-1").
			WillReturnError(sql.ErrConnDone)

		p, err := repo.FindByID(context.Background(), "prod-1")
		assert.Error(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
