package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/hitoshi/yogastudio/internal/model"
)

// --- GET /api/user/{id} ---

func TestUserHandler_Get(t *testing.T) {
	svc := &mockUserService{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{
				ID: id, Email: "yoga@studio.com", FirstName: "Yoga", LastName: "Studio",
				PasswordHash: "$2a$10$secret", Admin: true,
			}, nil
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodGet, "/api/user/{id}", "/api/user/1", "", testPrincipal(), h.Get)

	assertStatus(t, w, http.StatusOK)

	if strings.Contains(w.Body.String(), "secret") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("response must not contain the password: %s", w.Body.String())
	}

	var body userResponse
	decodeBody(t, w, &body)
	if body.ID != 1 || body.Email != "yoga@studio.com" || !body.Admin {
		t.Errorf("body = %+v", body)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	w := serveRoute(t, http.MethodGet, "/api/user/{id}", "/api/user/99", "", testPrincipal(), h.Get)

	assertStatus(t, w, http.StatusNotFound)
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	w := serveRoute(t, http.MethodGet, "/api/user/{id}", "/api/user/me", "", testPrincipal(), h.Get)

	assertStatus(t, w, http.StatusBadRequest)
}

// --- DELETE /api/user/{id} ---

func TestUserHandler_Delete_Owner(t *testing.T) {
	var gotEmail string
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id int64, requesterEmail string) error {
			gotEmail = requesterEmail
			return nil
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/1", "", testPrincipal(), h.Delete)

	assertStatus(t, w, http.StatusOK)
	if gotEmail != "yoga@studio.com" {
		t.Errorf("requesterEmail = %q, want %q", gotEmail, "yoga@studio.com")
	}
}

func TestUserHandler_Delete_OtherUser_Returns401(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id int64, requesterEmail string) error {
			return model.NewForbiddenUserError()
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/2", "", testPrincipal(), h.Delete)

	assertStatus(t, w, http.StatusUnauthorized)
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id int64, requesterEmail string) error {
			return model.NewUserNotFoundError(id)
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/2", "", testPrincipal(), h.Delete)

	assertStatus(t, w, http.StatusNotFound)
}

func TestUserHandler_Delete_InvalidID(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/x", "", testPrincipal(), h.Delete)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestUserHandler_Delete_NoPrincipal(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id int64, requesterEmail string) error {
			t.Fatal("service must not be called without a principal")
			return nil
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/1", "", nil, h.Delete)

	assertStatus(t, w, http.StatusUnauthorized)
}

func TestUserHandler_Delete_InternalError(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id int64, requesterEmail string) error {
			return errors.New("transaction failed")
		},
	}
	h := NewUserHandler(svc)

	w := serveRoute(t, http.MethodDelete, "/api/user/{id}", "/api/user/1", "", testPrincipal(), h.Delete)

	assertStatus(t, w, http.StatusInternalServerError)
}
