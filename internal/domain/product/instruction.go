package product

import (
	"fmt"
	"strings"
)

// ResolveInstruction コードタイプに対応する説明文を解決する
// 一致するテンプレートがあればその本文を、なければ商品説明を返す。
// この解決は引き換え処理を失敗させない（常に何らかの文字列を返す）。
func (p *Product) ResolveInstruction(codeType string) string {
	for _, t := range p.templates {
		if t.CodeType() == codeType {
			return t.Content()
		}
	}
	return p.description
}

// ApplyMetadata 説明文に{{key}}形式のプレースホルダーを適用する
// メタデータの値は文字列化して埋め込む。
func ApplyMetadata(instruction string, metadata map[string]interface{}) string {
	if instruction == "" || len(metadata) == 0 {
		return instruction
	}
	result := instruction
	for key, value := range metadata {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, fmt.Sprintf("%v", value))
	}
	return result
}
