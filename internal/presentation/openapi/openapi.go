// Package openapi はAPI仕様ファイルをバイナリに埋め込んで配信する
package openapi

import _ "embed"

// Spec OpenAPI仕様（YAML）
//
//go:embed openapi.yaml
var Spec []byte
