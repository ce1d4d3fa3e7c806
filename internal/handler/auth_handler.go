// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/yogastudio/internal/middleware"
	"github.com/hitoshi/yogastudio/internal/security"
)

const registeredMessage = "User registered successfully!"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を検証しJWTを発行する。
	// 資格情報が誤っている場合はsecurity.ErrInvalidCredentialsを返す。
	Login(ctx context.Context, email, password string) (*jwtResponse, error)
	// Register は一般ユーザーを登録する。
	Register(ctx context.Context, req signupRequest) error
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupRequest はユーザー登録リクエストのボディ。
type signupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// jwtResponse はログイン成功時のレスポンス。
type jwtResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

// AuthHandler はログイン・登録のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login は資格情報を検証し、JWTを返す。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			middleware.WriteUnauthorized(w, r, security.ErrInvalidCredentials.Error())
			return
		}
		slog.Error("login failed with internal error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, resp)
}

// Register はユーザーを登録する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.Register(r.Context(), req); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, messageResponse{Message: registeredMessage})
}
