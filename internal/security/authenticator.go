package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/yogastudio/internal/model"
)

// ErrInvalidCredentials はユーザー名またはパスワードが誤っている場合に返す。
// どちらが誤っているかは区別しない。
var ErrInvalidCredentials = errors.New("Bad credentials")

// dummyComparer は存在しないユーザーでもハッシュ比較を行うエンコーダが実装する。
type dummyComparer interface {
	CompareDummy(raw string)
}

// Authenticator はユーザー名とパスワードを検証してPrincipalを返す。
type Authenticator struct {
	users   UserLookup
	encoder PasswordEncoder
	timeout time.Duration
}

// NewAuthenticator はAuthenticatorを生成する。
// timeoutはユーザー検索1回分の上限で、0以下なら呼び出し元のcontextにのみ従う。
func NewAuthenticator(users UserLookup, encoder PasswordEncoder, timeout time.Duration) *Authenticator {
	return &Authenticator{users: users, encoder: encoder, timeout: timeout}
}

// Authenticate は資格情報を検証する。
// 未登録ユーザーとパスワード不一致はどちらもErrInvalidCredentialsになる。
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	user, err := a.lookup(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}

	if user == nil {
		if d, ok := a.encoder.(dummyComparer); ok {
			d.CompareDummy(password)
		}
		return nil, ErrInvalidCredentials
	}

	if !a.encoder.Matches(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return NewPrincipal(user), nil
}

func (a *Authenticator) lookup(ctx context.Context, username string) (*model.User, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.users.FindByEmail(ctx, username)
}
