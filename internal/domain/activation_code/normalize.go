package activation_code

import (
	"strings"
)

// legacyPrefix 旧形式コードのプレフィックス（CDK-XXXX-XXXX-XXXX-XXXX）
const legacyPrefix = "CDK-"

// canonicalPrefix 旧形式コードを正規化した際のプレフィックス
const canonicalPrefix = "GPT"

// Normalize 入力コードを正規形に変換する
// trim + 大文字化を行い、旧形式（CDK-XXXX-...）はハイフンを除去して
// 先頭のCDKをGPTに置き換える。純粋な文字列変換で状態を持たない。
func Normalize(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if strings.HasPrefix(code, legacyPrefix) {
		code = strings.ReplaceAll(code, "-", "")
		code = canonicalPrefix + strings.TrimPrefix(code, "CDK")
	}
	return code
}
