package security

import "context"

type principalContextKey struct{}

// WithPrincipal はPrincipalを格納したcontextを返す。
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext はcontextからPrincipalを取り出す。
// 未認証のリクエストではnilを返す。
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
