package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/yogastudio/internal/model"
)

// ErrPrincipalNotFound はユーザー名に対応するアカウントが存在しないことを表す。
// errors.Isで*NotFoundErrorと一致する。
var ErrPrincipalNotFound = errors.New("principal not found")

// NotFoundError はPrincipal解決時にユーザーが見つからなかったことを表す。
type NotFoundError struct {
	Username string
}

func (e *NotFoundError) Error() string {
	return "User Not Found with email: " + e.Username
}

// Is はErrPrincipalNotFoundとの比較に使われる。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrPrincipalNotFound
}

// Principal はリクエスト中に解決された呼び出し元の身元。永続化はしない。
type Principal struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	PasswordHash string   `json:"-"`
	Admin        bool     `json:"admin"`
	Authorities  []string `json:"authorities"`
}

// NewPrincipal はユーザーレコードからPrincipalを組み立てる。
// 権限は現状付与しない。
func NewPrincipal(u *model.User) *Principal {
	return &Principal{
		ID:           u.ID,
		Username:     u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		Authorities:  []string{},
	}
}

// Equal はIDが一致する場合にtrueを返す。
func (p *Principal) Equal(other *Principal) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID
}

// UserLookup はメールアドレスでユーザーを取得する。
// 見つからない場合は nil, nil を返す。
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PrincipalResolver はユーザー名からPrincipalを解決する。
type PrincipalResolver interface {
	LoadByUsername(ctx context.Context, username string) (*Principal, error)
}

// UserDetailsResolver はUserLookupを使ってPrincipalを解決する。
type UserDetailsResolver struct {
	users   UserLookup
	timeout time.Duration
}

// NewUserDetailsResolver はUserDetailsResolverを生成する。
// timeoutが0以下の場合は呼び出し元のcontextの期限のみに従う。
func NewUserDetailsResolver(users UserLookup, timeout time.Duration) *UserDetailsResolver {
	return &UserDetailsResolver{users: users, timeout: timeout}
}

// LoadByUsername はユーザー名に対応するPrincipalを返す。
// ユーザーが存在しない場合は*NotFoundErrorを返す。ストアの障害はそのままラップして返す。
func (r *UserDetailsResolver) LoadByUsername(ctx context.Context, username string) (*Principal, error) {
	if username == "" {
		return nil, &NotFoundError{Username: username}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	user, err := r.users.FindByEmail(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	if user == nil {
		return nil, &NotFoundError{Username: username}
	}

	return NewPrincipal(user), nil
}

// compile-time interface check
var _ PrincipalResolver = (*UserDetailsResolver)(nil)
