package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/yogastudio/internal/middleware"
	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/security"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// Delete はユーザーを削除する。requesterEmailが本人でない場合はFORBIDDEN_USERを返す。
	Delete(ctx context.Context, id int64, requesterEmail string) error
}

// userResponse はユーザー情報のAPIレスポンス。パスワードは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	LastName  string    `json:"lastName"`
	FirstName string    `json:"firstName"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// Get はユーザー情報を返す。
// GET /api/user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, toUserResponse(u))
}

// Delete は本人のアカウントを削除する。
// DELETE /api/user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := security.PrincipalFromContext(r.Context())
	if principal == nil {
		middleware.WriteUnauthorized(w, r, middleware.MessageFullAuthenticationRequired)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, principal.Username); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		LastName:  u.LastName,
		FirstName: u.FirstName,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
