package product

import (
	"errors"
	"time"
)

// ProductFile 商品ファイルエンティティ
type ProductFile struct {
	fileID       string
	fileName     string
	originalName string
	filePath     string
	mimeType     string
	fileType     string
	sortOrder    int
}

// NewProductFile 新しいProductFileエンティティを作成
func NewProductFile(fileID, fileName, originalName, filePath, mimeType, fileType string, sortOrder int) *ProductFile {
	return &ProductFile{
		fileID:       fileID,
		fileName:     fileName,
		originalName: originalName,
		filePath:     filePath,
		mimeType:     mimeType,
		fileType:     fileType,
		sortOrder:    sortOrder,
	}
}

// FileID ファイルIDを返す
func (pf *ProductFile) FileID() string { return pf.fileID }

// FileName ファイル名を返す
func (pf *ProductFile) FileName() string { return pf.fileName }

// OriginalName 元のファイル名を返す
func (pf *ProductFile) OriginalName() string { return pf.originalName }

// FilePath ファイルパスを返す
func (pf *ProductFile) FilePath() string { return pf.filePath }

// MimeType MIMEタイプを返す
func (pf *ProductFile) MimeType() string { return pf.mimeType }

// FileType ファイルタイプを返す
func (pf *ProductFile) FileType() string { return pf.fileType }

// SortOrder 表示順を返す
func (pf *ProductFile) SortOrder() int { return pf.sortOrder }

// InstructionTemplate 説明テンプレートエンティティ
// コードタイプごとに異なる説明文を出し分けるために使用する
type InstructionTemplate struct {
	templateID string
	codeType   string
	content    string
}

// NewInstructionTemplate 新しいInstructionTemplateエンティティを作成
func NewInstructionTemplate(templateID, codeType, content string) *InstructionTemplate {
	return &InstructionTemplate{
		templateID: templateID,
		codeType:   codeType,
		content:    content,
	}
}

// TemplateID テンプレートIDを返す
func (it *InstructionTemplate) TemplateID() string { return it.templateID }

// CodeType 対象コードタイプを返す
func (it *InstructionTemplate) CodeType() string { return it.codeType }

// Content テンプレート本文を返す
func (it *InstructionTemplate) Content() string { return it.content }

// Product 商品エンティティ
type Product struct {
	id               string
	name             string
	description      string
	shortDescription string
	productType      ProductType
	gptType          string // subscription商品が消費するCDKカテゴリ
	active           bool
	files            []*ProductFile
	templates        []*InstructionTemplate
	createdAt        time.Time
	updatedAt        time.Time
}

// NewProduct 新しいProductエンティティを作成
func NewProduct(
	id string,
	name string,
	description string,
	shortDescription string,
	productType ProductType,
	gptType string,
) (*Product, error) {
	if id == "" {
		return nil, errors.New("invalid product id")
	}
	if name == "" {
		return nil, errors.New("invalid product name")
	}
	if !productType.Valid() {
		return nil, errors.New("invalid product type")
	}
	if productType.RequiresCDK() && gptType == "" {
		return nil, errors.New("subscription product requires a cdk category")
	}

	now := time.Now()
	return &Product{
		id:               id,
		name:             name,
		description:      description,
		shortDescription: shortDescription,
		productType:      productType,
		gptType:          gptType,
		active:           true,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ID 商品IDを返す
func (p *Product) ID() string { return p.id }

// Name 商品名を返す
func (p *Product) Name() string { return p.name }

// Description 商品説明を返す
func (p *Product) Description() string { return p.description }

// ShortDescription 短い商品説明を返す
func (p *Product) ShortDescription() string { return p.shortDescription }

// Type 商品タイプを返す
func (p *Product) Type() ProductType { return p.productType }

// GPTType 消費するCDKカテゴリを返す
func (p *Product) GPTType() string { return p.gptType }

// Active 商品が有効かどうかを返す
func (p *Product) Active() bool { return p.active }

// Files 商品ファイルの一覧を返す
func (p *Product) Files() []*ProductFile { return p.files }

// Templates 説明テンプレートの一覧を返す
func (p *Product) Templates() []*InstructionTemplate { return p.templates }

// CreatedAt 作成日時を返す
func (p *Product) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt 更新日時を返す
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// SetActive 有効フラグを設定（リポジトリから読み込んだ際に使用）
func (p *Product) SetActive(active bool) {
	p.active = active
}

// SetFiles 商品ファイルを設定（リポジトリから読み込んだ際に使用）
func (p *Product) SetFiles(files []*ProductFile) {
	p.files = files
}

// SetTemplates 説明テンプレートを設定（リポジトリから読み込んだ際に使用）
func (p *Product) SetTemplates(templates []*InstructionTemplate) {
	p.templates = templates
}

// MustNewProduct テスト用ヘルパー: NewProductを呼び出し、エラーが発生した場合はpanicする
func MustNewProduct(
	id string,
	name string,
	description string,
	shortDescription string,
	productType ProductType,
	gptType string,
) *Product {
	p, err := NewProduct(id, name, description, shortDescription, productType, gptType)
	if err != nil {
		panic(err)
	}
	return p
}
