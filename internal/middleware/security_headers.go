package middleware

import "net/http"

// JSONしか返さないAPIのため、どのリソースの読み込みもフレーム埋め込みも許可しない。
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

const hstsValue = "max-age=31536000; includeSubDomains"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// ログイン応答にはトークンが含まれるため、すべてのレスポンスをno-storeにする。
// Strict-Transport-SecurityはTLS終端が確認できたリクエストにのみ付与する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", apiContentSecurityPolicy)
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			if isHTTPS(r) {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isHTTPS はリクエストがTLS経由で届いたかを判定する。
// リバースプロキシ配下ではX-Forwarded-Protoを参照する。
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
