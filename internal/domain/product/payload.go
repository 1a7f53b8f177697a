package product

// PayloadKind 引き換え結果ペイロードの種別
type PayloadKind string

const (
	// PayloadKindPlainContent 説明文・ファイルを同期的に返すペイロード
	PayloadKindPlainContent PayloadKind = "plain_content"
	// PayloadKindTokenActivation サードパーティ活性化タスクを返すペイロード
	PayloadKindTokenActivation PayloadKind = "token_activation"
)

// Payload 引き換え結果ペイロード
// 商品タイプに応じて一度だけ解決されるタグ付きユニオン。
// KindがPlainContentの場合はInstruction/Filesが、
// TokenActivationの場合はTaskID/CDKが有効になる。
type Payload struct {
	Kind        PayloadKind
	ProductID   string
	ProductName string
	ProductType ProductType
	Description string

	// PlainContent
	Instruction string
	Files       []*ProductFile

	// TokenActivation
	TaskID string
	CDK    string

	// パートナー商品（コードメタデータ経由で紐付く副次商品）
	Partner *PartnerSection
}

// PartnerSection パートナー商品のペイロードセクション
// 解決に失敗した場合はセクション自体が省略される（引き換えは失敗しない）。
type PartnerSection struct {
	ProductID   string
	ProductName string
	Instruction string
	Files       []*ProductFile
}

// NewPlainContentPayload 同期コンテンツ用のペイロードを作成
func NewPlainContentPayload(p *Product, instruction string) *Payload {
	return &Payload{
		Kind:        PayloadKindPlainContent,
		ProductID:   p.ID(),
		ProductName: p.Name(),
		ProductType: p.Type(),
		Description: p.ShortDescription(),
		Instruction: instruction,
		Files:       p.Files(),
	}
}

// NewTokenActivationPayload サードパーティ活性化用のペイロードを作成
func NewTokenActivationPayload(p *Product, instruction, taskID, cdk string) *Payload {
	return &Payload{
		Kind:        PayloadKindTokenActivation,
		ProductID:   p.ID(),
		ProductName: p.Name(),
		ProductType: p.Type(),
		Description: p.ShortDescription(),
		Instruction: instruction,
		TaskID:      taskID,
		CDK:         cdk,
	}
}
