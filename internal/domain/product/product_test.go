package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name             string
		id               string
		productName      string
		description      string
		shortDescription string
		productType      ProductType
		gptType          string
		wantErr          bool
	}{
		{
			name:             "正常系: ダウンロード商品の作成",
			id:               "prod-1",
			productName:      "設定ファイル集",
			description:      "ダウンロードして展開してください",
			shortDescription: "配布物",
			productType:      ProductTypeDigitalFile,
			gptType:          "",
			wantErr:          false,
		},
		{
			name:        "正常系: サブスクリプション商品の作成",
			id:          "prod-2",
			productName: "ChatGPT Plus 1ヶ月",
			productType: ProductTypeSubscription,
			gptType:     "plus_1m",
			wantErr:     false,
		},
		{
			name:        "異常系: 空の商品ID",
			id:          "",
			productName: "商品",
			productType: ProductTypeText,
			wantErr:     true,
		},
		{
			name:        "異常系: 空の商品名",
			id:          "prod-3",
			productName: "",
			productType: ProductTypeText,
			wantErr:     true,
		},
		{
			name:        "異常系: 無効な商品タイプ",
			id:          "prod-4",
			productName: "商品",
			productType: ProductType("invalid"),
			wantErr:     true,
		},
		{
			name:        "異常系: CDKカテゴリなしのサブスクリプション商品",
			id:          "prod-5",
			productName: "ChatGPT Plus 1ヶ月",
			productType: ProductTypeSubscription,
			gptType:     "",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewProduct(tt.id, tt.productName, tt.description, tt.shortDescription, tt.productType, tt.gptType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID())
			assert.Equal(t, tt.productName, got.Name())
			assert.Equal(t, tt.productType, got.Type())
			assert.Equal(t, tt.gptType, got.GPTType())
			assert.True(t, got.Active())
		})
	}
}

func TestProduct_ResolveInstruction(t *testing.T) {
	p := MustNewProduct("prod-1", "商品", "デフォルトの説明", "", ProductTypeText, "")
	p.SetTemplates([]*InstructionTemplate{
		NewInstructionTemplate("tpl-1", "plus_1m", "Plusの説明"),
		NewInstructionTemplate("tpl-2", "team_1m", "Teamの説明"),
	})

	tests := []struct {
		name     string
		codeType string
		want     string
	}{
		{
			name:     "正常系: 一致するテンプレートの本文を返す",
			codeType: "plus_1m",
			want:     "Plusの説明",
		},
		{
			name:     "正常系: 一致しない場合は商品説明を返す",
			codeType: "unknown",
			want:     "デフォルトの説明",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ResolveInstruction(tt.codeType))
		})
	}
}

func TestApplyMetadata(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		metadata    map[string]interface{}
		want        string
	}{
		{
			name:        "正常系: プレースホルダーが置換される",
			instruction: "ライセンスキー: {{license_key}}",
			metadata:    map[string]interface{}{"license_key": "ABC-123"},
			want:        "ライセンスキー: ABC-123",
		},
		{
			name:        "正常系: 数値も文字列化される",
			instruction: "有効日数: {{days}}日",
			metadata:    map[string]interface{}{"days": 30},
			want:        "有効日数: 30日",
		},
		{
			name:        "正常系: メタデータにないプレースホルダーはそのまま",
			instruction: "キー: {{missing}}",
			metadata:    map[string]interface{}{"other": "value"},
			want:        "キー: {{missing}}",
		},
		{
			name:        "正常系: メタデータが空の場合はそのまま",
			instruction: "説明文",
			metadata:    nil,
			want:        "説明文",
		},
		{
			name:        "正常系: 空の説明文",
			instruction: "",
			metadata:    map[string]interface{}{"key": "value"},
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyMetadata(tt.instruction, tt.metadata))
		})
	}
}
