package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/yogastudio/internal/model"
)

// SessionServiceInterface はセッションハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	FindAll(ctx context.Context) ([]*model.Session, error)
	FindByID(ctx context.Context, id int64) (*model.Session, error)
	Create(ctx context.Context, req sessionRequest) (*model.Session, error)
	// Update はセッションの基本情報を更新する。参加者は変更しない。
	Update(ctx context.Context, id int64, req sessionRequest) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
	Participate(ctx context.Context, id, userID int64) error
	NoLongerParticipate(ctx context.Context, id, userID int64) error
}

// sessionRequest はセッション作成・更新リクエストのボディ。
// dateはRFC3339または YYYY-MM-DD 形式で受け付ける。
type sessionRequest struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	TeacherID   int64   `json:"teacher_id"`
	Description string  `json:"description"`
	Users       []int64 `json:"users"`
}

// sessionResponse はセッション情報のAPIレスポンス。
type sessionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	TeacherID   int64     `json:"teacher_id"`
	Description string    `json:"description"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SessionHandler はヨガセッションのHTTPハンドラー。
type SessionHandler struct {
	service SessionServiceInterface
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface) *SessionHandler {
	return &SessionHandler{service: service}
}

// List はセッション一覧を返す。
// GET /api/session
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.FindAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		resp[i] = toSessionResponse(s)
	}
	writeJSON(w, resp)
}

// Get はセッション詳細を返す。
// GET /api/session/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, toSessionResponse(s))
}

// Create はセッションを作成する。
// POST /api/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	s, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, toSessionResponse(s))
}

// Update はセッションを更新する。
// PUT /api/session/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	s, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, toSessionResponse(s))
}

// Delete はセッションを削除する。
// DELETE /api/session/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Participate はユーザーをセッションに参加させる。
// POST /api/session/{id}/participate/{userId}
func (h *SessionHandler) Participate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.Participate(r.Context(), id, userID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// NoLongerParticipate はユーザーをセッションから離脱させる。
// DELETE /api/session/{id}/participate/{userId}
func (h *SessionHandler) NoLongerParticipate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.NoLongerParticipate(r.Context(), id, userID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// toSessionResponse はmodel.SessionからAPIレスポンスに変換する。
func toSessionResponse(s *model.Session) sessionResponse {
	users := s.Users
	if users == nil {
		users = []int64{}
	}
	return sessionResponse{
		ID:          s.ID,
		Name:        s.Name,
		Date:        s.Date,
		TeacherID:   s.TeacherID,
		Description: s.Description,
		Users:       users,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
