package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/security"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*jwtResponse, error)
	registerFn func(ctx context.Context, req signupRequest) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*jwtResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, security.ErrInvalidCredentials
}

func (m *mockAuthService) Register(ctx context.Context, req signupRequest) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil
}

type mockSessionService struct {
	findAllFn             func(ctx context.Context) ([]*model.Session, error)
	findByIDFn            func(ctx context.Context, id int64) (*model.Session, error)
	createFn              func(ctx context.Context, req sessionRequest) (*model.Session, error)
	updateFn              func(ctx context.Context, id int64, req sessionRequest) (*model.Session, error)
	deleteFn              func(ctx context.Context, id int64) error
	participateFn         func(ctx context.Context, id, userID int64) error
	noLongerParticipateFn func(ctx context.Context, id, userID int64) error
}

func (m *mockSessionService) FindAll(ctx context.Context) ([]*model.Session, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionService) FindByID(ctx context.Context, id int64) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.NewSessionNotFoundError(id)
}

func (m *mockSessionService) Create(ctx context.Context, req sessionRequest) (*model.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Session{ID: 1, Name: req.Name}, nil
}

func (m *mockSessionService) Update(ctx context.Context, id int64, req sessionRequest) (*model.Session, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.Session{ID: id, Name: req.Name}, nil
}

func (m *mockSessionService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSessionService) Participate(ctx context.Context, id, userID int64) error {
	if m.participateFn != nil {
		return m.participateFn(ctx, id, userID)
	}
	return nil
}

func (m *mockSessionService) NoLongerParticipate(ctx context.Context, id, userID int64) error {
	if m.noLongerParticipateFn != nil {
		return m.noLongerParticipateFn(ctx, id, userID)
	}
	return nil
}

type mockTeacherService struct {
	findAllFn  func(ctx context.Context) ([]*model.Teacher, error)
	findByIDFn func(ctx context.Context, id int64) (*model.Teacher, error)
}

func (m *mockTeacherService) FindAll(ctx context.Context) ([]*model.Teacher, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return []*model.Teacher{}, nil
}

func (m *mockTeacherService) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.NewTeacherNotFoundError(id)
}

type mockUserService struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
	deleteFn   func(ctx context.Context, id int64, requesterEmail string) error
}

func (m *mockUserService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.NewUserNotFoundError(id)
}

func (m *mockUserService) Delete(ctx context.Context, id int64, requesterEmail string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, requesterEmail)
	}
	return nil
}

// --- ヘルパー ---

// serveRoute はchiのルートパターンにハンドラーを登録してリクエストを処理する。
// principalがnilでない場合はコンテキストに格納する。
func serveRoute(t *testing.T, method, pattern, target, body string, principal *security.Principal, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if principal != nil {
		req = req.WithContext(security.WithPrincipal(req.Context(), principal))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testPrincipal() *security.Principal {
	return &security.Principal{ID: 1, Username: "yoga@studio.com", FirstName: "Yoga", LastName: "Studio", Authorities: []string{}}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v (body=%q)", err, w.Body.String())
	}
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("status = %d, want %d (body=%s)", w.Code, want, w.Body.String())
	}
}
