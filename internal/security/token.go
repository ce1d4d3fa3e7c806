package security

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// トークン検証エラー
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenCodec はBearerトークンの発行と検証を行う。
type TokenCodec interface {
	// Issue はPrincipalのユーザー名をsubjectとしたトークンを発行する。
	Issue(p *Principal) (string, error)
	// Validate は署名と有効期限を検証する。失敗理由は返さず、ログにのみ残す。
	Validate(token string) bool
	// ExtractSubject はトークンのsubject（ユーザー名）を返す。
	ExtractSubject(token string) (string, error)
}

// JWTCodec はHS256署名のJWTを扱うTokenCodecの実装。
// secretとttlは生成後に変更しない。
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec はJWTCodecを生成する。
func NewJWTCodec(secret []byte, ttl time.Duration) *JWTCodec {
	return &JWTCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はsub, iat, exp, jtiを含むトークンを発行する。
// ttlが0以下の場合、発行されたトークンは即座に期限切れとなる。
func (c *JWTCodec) Issue(p *Principal) (string, error) {
	if p == nil || p.Username == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   p.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate はトークンが正しく署名され、期限内であればtrueを返す。
func (c *JWTCodec) Validate(token string) bool {
	if _, err := c.parse(token); err != nil {
		slog.Debug("token rejected", slog.String("reason", err.Error()))
		return false
	}
	return true
}

// ExtractSubject はトークンを検証したうえでsubjectを返す。
func (c *JWTCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	return claims.Subject, nil
}

func (c *JWTCodec) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			// HMAC以外のアルゴリズム（none, RS256等）は拒否する
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// compile-time interface check
var _ TokenCodec = (*JWTCodec)(nil)
