package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/yogastudio/internal/middleware"
	"github.com/hitoshi/yogastudio/internal/model"
)

// messageResponse はメッセージのみを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON はステータス200でJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeInvalidRequest はリクエストボディの解析失敗を返す。
func writeInvalidRequest(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "Failed to parse request body.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound, model.ErrCodeTeacherNotFound, model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyParticipating, model.ErrCodeNotParticipating:
		return http.StatusBadRequest
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidID, model.ErrCodeEmailTaken:
		return http.StatusBadRequest
	case model.ErrCodeForbiddenUser:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// pathID はURLパラメータを正の整数IDとして解析する。
// 解析できない場合はINVALID_IDのレスポンスを書き込み、falseを返す。
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidIDError(raw))
		return 0, false
	}
	return id, true
}
