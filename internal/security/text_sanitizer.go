// Package security はアプリケーションのセキュリティ機能を提供する。
//
// JWTの発行と検証、リクエストごとのPrincipal解決、パスワード照合、
// および利用者が入力するテキストのサニタイズを扱う。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力のテキストからHTMLを除去する。
// セッション名・説明、ユーザーの氏名の保存前に使用される。
type TextSanitizer interface {
	// Sanitize は全てのタグを除去し、前後の空白を取り除いた文字列を返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string
}

// textSanitizer はbluemondayのStrictPolicyを保持するTextSanitizerの実装。
// ポリシーはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses は実体参照の多重エンコードを剥がす回数の上限。
const maxSanitizePasses = 5

// Sanitize はタグを除去したプレーンテキストを返す。
// bluemondayの出力はHTMLエスケープ済みのため、保存・JSON応答用に平文へ戻す。
// デコードで新たなタグが現れることがあるため、結果が変わらなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}
