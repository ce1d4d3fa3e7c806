package security

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordEncoder はパスワードのハッシュ化と照合を行う。
type PasswordEncoder interface {
	Hash(raw string) (string, error)
	Matches(raw, hash string) bool
}

// BcryptEncoder はbcryptを使用するPasswordEncoder。
type BcryptEncoder struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewBcryptEncoder はBcryptEncoderを生成する。
// 範囲外のcostはbcrypt.DefaultCostに置き換える。
func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

// Hash はパスワードをbcryptでハッシュ化する。
func (e *BcryptEncoder) Hash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), e.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Matches はパスワードとハッシュが一致するかを返す。
func (e *BcryptEncoder) Matches(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// CompareDummy は存在しないユーザーに対しても同じコストの比較を行い、応答時間を揃える。
func (e *BcryptEncoder) CompareDummy(raw string) {
	e.dummyOnce.Do(func() {
		e.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("yogastudio-dummy-password"), e.cost)
	})
	_ = bcrypt.CompareHashAndPassword(e.dummyHash, []byte(raw))
}

// compile-time interface check
var _ PasswordEncoder = (*BcryptEncoder)(nil)
