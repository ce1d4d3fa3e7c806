package handler

import (
	"context"
	"time"

	"github.com/hitoshi/yogastudio/internal/auth"
	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/session"
	"github.com/hitoshi/yogastudio/internal/teacher"
	"github.com/hitoshi/yogastudio/internal/user"
)

// 日付のみの入力形式
const dateOnlyLayout = "2006-01-02"

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	svc *auth.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(svc *auth.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{svc: svc}
}

// Login はログインしhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, email, password string) (*jwtResponse, error) {
	result, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &jwtResponse{
		Token:     result.Token,
		Type:      result.Type,
		ID:        result.ID,
		Username:  result.Username,
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Admin:     result.Admin,
	}, nil
}

// Register はリクエストをドメインの入力に変換してユーザーを登録する。
func (a *AuthServiceAdapter) Register(ctx context.Context, req signupRequest) error {
	return a.svc.Register(ctx, auth.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
}

// SessionServiceAdapter は session.Service を SessionServiceInterface に適合させるアダプタ。
type SessionServiceAdapter struct {
	svc *session.Service
}

// NewSessionServiceAdapter はSessionServiceAdapterを生成する。
func NewSessionServiceAdapter(svc *session.Service) *SessionServiceAdapter {
	return &SessionServiceAdapter{svc: svc}
}

// FindAll はセッション一覧を返す。
func (a *SessionServiceAdapter) FindAll(ctx context.Context) ([]*model.Session, error) {
	return a.svc.FindAll(ctx)
}

// FindByID はセッションを返す。
func (a *SessionServiceAdapter) FindByID(ctx context.Context, id int64) (*model.Session, error) {
	return a.svc.FindByID(ctx, id)
}

// Create はリクエストをドメインの入力に変換してセッションを作成する。
func (a *SessionServiceAdapter) Create(ctx context.Context, req sessionRequest) (*model.Session, error) {
	in, err := toSessionInput(req)
	if err != nil {
		return nil, err
	}
	return a.svc.Create(ctx, in)
}

// Update はリクエストをドメインの入力に変換してセッションを更新する。
func (a *SessionServiceAdapter) Update(ctx context.Context, id int64, req sessionRequest) (*model.Session, error) {
	in, err := toSessionInput(req)
	if err != nil {
		return nil, err
	}
	return a.svc.Update(ctx, id, in)
}

// Delete はセッションを削除する。
func (a *SessionServiceAdapter) Delete(ctx context.Context, id int64) error {
	return a.svc.Delete(ctx, id)
}

// Participate はユーザーをセッションに参加させる。
func (a *SessionServiceAdapter) Participate(ctx context.Context, id, userID int64) error {
	return a.svc.Participate(ctx, id, userID)
}

// NoLongerParticipate はユーザーをセッションから外す。
func (a *SessionServiceAdapter) NoLongerParticipate(ctx context.Context, id, userID int64) error {
	return a.svc.NoLongerParticipate(ctx, id, userID)
}

// toSessionInput はリクエストをsession.Inputに変換する。
// 日付が解析できない場合はVALIDATION_FAILEDのAPIErrorを返す。
func toSessionInput(req sessionRequest) (session.Input, error) {
	date, err := parseSessionDate(req.Date)
	if err != nil {
		return session.Input{}, err
	}
	return session.Input{
		Name:        req.Name,
		Date:        date,
		TeacherID:   req.TeacherID,
		Description: req.Description,
		Users:       req.Users,
	}, nil
}

// parseSessionDate はRFC3339または日付のみの文字列を解析する。
// 空文字列はゼロ値を返し、必須チェックはサービス層に任せる。
func parseSessionDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, model.NewValidationError("date", "must be RFC3339 or YYYY-MM-DD")
}

// --- compile-time interface checks ---

var _ AuthServiceInterface = (*AuthServiceAdapter)(nil)
var _ SessionServiceInterface = (*SessionServiceAdapter)(nil)
var _ TeacherServiceInterface = (*teacher.Service)(nil)
var _ UserServiceInterface = (*user.Service)(nil)
