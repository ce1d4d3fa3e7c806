// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/hitoshi/yogastudio/internal/security"
)

const bearerPrefix = "Bearer "

// トークン拒否理由のラベル値
const (
	RejectReasonInvalid     = "invalid"
	RejectReasonUnknownUser = "unknown_user"
	RejectReasonStoreError  = "store_error"
	RejectReasonPanic       = "panic"
)

// AuthEventRecorder はトークン認証の失敗を記録する。metrics.Collectorが実装する。
type AuthEventRecorder interface {
	RecordTokenRejected(reason string)
	RecordPrincipalResolutionError()
}

type nopAuthRecorder struct{}

func (nopAuthRecorder) RecordTokenRejected(string) {}
func (nopAuthRecorder) RecordPrincipalResolutionError() {}

// NewAuthTokenMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 解決したPrincipalをリクエストコンテキストに格納するミドルウェアを返す。
// 認証に失敗してもリクエストは拒否せず、匿名のまま次のハンドラーへ渡す。
// 保護対象のルートではNewRequireAuthMiddlewareと組み合わせて使う。
func NewAuthTokenMiddleware(codec security.TokenCodec, resolver security.PrincipalResolver, recorder AuthEventRecorder) func(next http.Handler) http.Handler {
	if recorder == nil {
		recorder = nopAuthRecorder{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := authenticateRequest(r, codec, resolver, recorder); p != nil {
				r = r.WithContext(security.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticateRequest はトークン検証からPrincipal解決までを行う。
// 途中のpanicは回復し、未認証として扱う。
func authenticateRequest(r *http.Request, codec security.TokenCodec, resolver security.PrincipalResolver, recorder AuthEventRecorder) (principal *security.Principal) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic during token authentication",
				slog.Any("panic", rec),
				slog.String("path", r.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			recorder.RecordTokenRejected(RejectReasonPanic)
			principal = nil
		}
	}()

	token, ok := bearerToken(r)
	if !ok {
		return nil
	}

	if !codec.Validate(token) {
		recorder.RecordTokenRejected(RejectReasonInvalid)
		return nil
	}

	username, err := codec.ExtractSubject(token)
	if err != nil {
		slog.Debug("token subject unreadable", slog.String("error", err.Error()))
		recorder.RecordTokenRejected(RejectReasonInvalid)
		return nil
	}

	p, err := resolver.LoadByUsername(r.Context(), username)
	if errors.Is(err, security.ErrPrincipalNotFound) {
		slog.Debug("token subject has no account", slog.String("user", username))
		recorder.RecordTokenRejected(RejectReasonUnknownUser)
		return nil
	}
	if err != nil {
		// ストア障害はトークン不正と区別してerrorで残す
		slog.Error("principal resolution failed",
			slog.String("user", username),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		recorder.RecordTokenRejected(RejectReasonStoreError)
		recorder.RecordPrincipalResolutionError()
		return nil
	}

	return p
}

// bearerToken はAuthorizationヘッダーからトークン部分を取り出す。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
