// Package auth はログイン・ユーザー登録のユースケースを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"unicode/utf8"

	"github.com/hitoshi/yogastudio/internal/metrics"
	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/repository"
	"github.com/hitoshi/yogastudio/internal/security"
)

// TokenType はログインレスポンスで返すトークン種別。
const TokenType = "Bearer"

// 登録時の入力制約
const (
	maxEmailLength    = 50
	minNameLength     = 1
	maxNameLength     = 20
	minPasswordLength = 6
	maxPasswordLength = 40
)

// CredentialAuthenticator は資格情報を検証してPrincipalを返す。
type CredentialAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*security.Principal, error)
}

// LoginRecorder はログイン結果を記録する。
type LoginRecorder interface {
	RecordLogin(result string)
}

type nopLoginRecorder struct{}

func (nopLoginRecorder) RecordLogin(string) {}

// LoginResult はログイン成功時に返す情報。
type LoginResult struct {
	Token     string
	Type      string
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Admin     bool
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	authenticator CredentialAuthenticator
	codec         security.TokenCodec
	userRepo      repository.UserRepository
	encoder       security.PasswordEncoder
	sanitizer     security.TextSanitizer
	recorder      LoginRecorder
}

// NewService はServiceを生成する。recorderがnilの場合は記録しない。
func NewService(
	authenticator CredentialAuthenticator,
	codec security.TokenCodec,
	userRepo repository.UserRepository,
	encoder security.PasswordEncoder,
	sanitizer security.TextSanitizer,
	recorder LoginRecorder,
) *Service {
	if recorder == nil {
		recorder = nopLoginRecorder{}
	}
	return &Service{
		authenticator: authenticator,
		codec:         codec,
		userRepo:      userRepo,
		encoder:       encoder,
		sanitizer:     sanitizer,
		recorder:      recorder,
	}
}

// Login は資格情報を検証し、JWTを発行する。
// 資格情報が誤っている場合はsecurity.ErrInvalidCredentialsを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	principal, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			s.recorder.RecordLogin(metrics.LoginResultFailure)
			slog.Info("login failed", slog.String("username", email))
			return nil, err
		}
		s.recorder.RecordLogin(metrics.LoginResultError)
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	token, err := s.codec.Issue(principal)
	if err != nil {
		s.recorder.RecordLogin(metrics.LoginResultError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recorder.RecordLogin(metrics.LoginResultSuccess)
	slog.Info("login succeeded",
		slog.Int64("user_id", principal.ID),
		slog.String("username", principal.Username),
	)

	return &LoginResult{
		Token:     token,
		Type:      TokenType,
		ID:        principal.ID,
		Username:  principal.Username,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		Admin:     principal.Admin,
	}, nil
}

// Register は一般ユーザーを登録する。
// 登録済みのメールアドレスの場合はEMAIL_TAKENのAPIErrorを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	in.FirstName = s.sanitizer.Sanitize(in.FirstName)
	in.LastName = s.sanitizer.Sanitize(in.LastName)

	if err := validateRegisterInput(in); err != nil {
		return err
	}

	_, err := s.createUser(ctx, in, false)
	return err
}

// EnsureAdmin は管理者アカウントが存在しなければ作成する。
// 作成した場合はtrueを返す。
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return false, nil
	}

	in := RegisterInput{Email: email, FirstName: "Admin", LastName: "Admin", Password: password}
	if _, err := s.createUser(ctx, in, true); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeEmailTaken {
			// 複数インスタンスが同時に起動した場合
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, in RegisterInput, admin bool) (*model.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.NewEmailTakenError()
	}

	hash, err := s.encoder.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Admin:        admin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.Bool("admin", admin),
	)
	return user, nil
}

func validateRegisterInput(in RegisterInput) error {
	if in.Email == "" {
		return model.NewValidationError("email", "must not be blank")
	}
	if utf8.RuneCountInString(in.Email) > maxEmailLength {
		return model.NewValidationError("email", fmt.Sprintf("size must be at most %d", maxEmailLength))
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return model.NewValidationError("email", "must be a well-formed email address")
	}

	if err := validateLength("firstName", in.FirstName, minNameLength, maxNameLength); err != nil {
		return err
	}
	if err := validateLength("lastName", in.LastName, minNameLength, maxNameLength); err != nil {
		return err
	}
	return validateLength("password", in.Password, minPasswordLength, maxPasswordLength)
}

func validateLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return model.NewValidationError(field, fmt.Sprintf("size must be between %d and %d", minLen, maxLen))
	}
	return nil
}
