package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/yogastudio/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// status/errorは401レスポンス（UnauthorizedBody）と同じ形に揃えている。
type ErrorResponseBody struct {
	Status   int    `json:"status"`
	Error    string `json:"error"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// システム起因のエラー。ドメインエラーはmodelパッケージのコンストラクタで生成する。
var (
	errInternal = &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
	errRateLimited = &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
)

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Status:   statusCode,
		Error:    http.StatusText(statusCode),
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は500レスポンスを書き込む。
// 原因はログにのみ残し、クライアントには汎用メッセージだけを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, errInternal)
}
