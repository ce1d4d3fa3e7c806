package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type"
	corsMaxAge       = "86400"
)

// NewCORSMiddleware はCORS_ALLOWED_ORIGINに基づくCORSミドルウェアを返す。
//
// allowedOriginsはカンマ区切りで複数指定できる。1件のみの場合は常にそのオリジンを返し、
// 複数の場合はリクエストのOriginが一致したときだけそのOriginを返す。
// フロントエンドはAuthorizationヘッダーでBearerトークンを送るため、そのヘッダーを許可する。
// OPTIONSプリフライトには後続ハンドラーを呼ばずに204で応答する。
func NewCORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	origins := parseOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := matchOrigin(origins, r.Header.Get("Origin")); origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// matchOrigin はレスポンスに載せるAccess-Control-Allow-Originの値を返す。
// 許可されないOriginの場合は空文字列を返す。
func matchOrigin(origins []string, requestOrigin string) string {
	switch len(origins) {
	case 0:
		return ""
	case 1:
		return origins[0]
	}
	for _, o := range origins {
		if o == "*" || o == requestOrigin {
			return requestOrigin
		}
	}
	return ""
}
