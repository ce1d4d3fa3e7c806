package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/yogastudio/internal/security"
)

// MessageFullAuthenticationRequired は未認証で保護対象にアクセスした場合のメッセージ。
const MessageFullAuthenticationRequired = "Full authentication is required to access this resource"

// UnauthorizedBody は401レスポンスのボディ。
type UnauthorizedBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// WriteUnauthorized は401レスポンスを書き込む。pathにはリクエストのパスをそのまま入れる。
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(UnauthorizedBody{
		Status:  http.StatusUnauthorized,
		Error:   "Unauthorized",
		Message: message,
		Path:    r.URL.Path,
	})
}

// NewRequireAuthMiddleware はコンテキストにPrincipalがないリクエストを401で拒否する。
// NewAuthTokenMiddlewareの後段に配置する。
func NewRequireAuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if security.PrincipalFromContext(r.Context()) == nil {
				WriteUnauthorized(w, r, MessageFullAuthenticationRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
