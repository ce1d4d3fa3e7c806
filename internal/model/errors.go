package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, session, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeTeacherNotFound      = "TEACHER_NOT_FOUND"
	ErrCodeSessionNotFound      = "SESSION_NOT_FOUND"
	ErrCodeAlreadyParticipating = "ALREADY_PARTICIPATING"
	ErrCodeNotParticipating     = "NOT_PARTICIPATING"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeInvalidID            = "INVALID_ID"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeForbiddenUser        = "FORBIDDEN_USER"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("User not found: %d", userID),
		Category: "auth",
		Action:   "Check the user ID.",
	}
}

// NewTeacherNotFoundError は講師が見つからない場合のエラーを生成する。
func NewTeacherNotFoundError(teacherID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTeacherNotFound,
		Message:  fmt.Sprintf("Teacher not found: %d", teacherID),
		Category: "session",
		Action:   "Check the teacher ID.",
	}
}

// NewSessionNotFoundError はセッションが見つからない場合のエラーを生成する。
func NewSessionNotFoundError(sessionID int64) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("Session not found: %d", sessionID),
		Category: "session",
		Action:   "Check the session ID.",
	}
}

// NewAlreadyParticipatingError は既に参加済みのセッションへ再参加しようとした場合のエラーを生成する。
func NewAlreadyParticipatingError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyParticipating,
		Message:  "User already participates in this session.",
		Category: "session",
		Action:   "Refresh the session to see its participants.",
	}
}

// NewNotParticipatingError は参加していないセッションから離脱しようとした場合のエラーを生成する。
func NewNotParticipatingError() *APIError {
	return &APIError{
		Code:     ErrCodeNotParticipating,
		Message:  "User does not participate in this session.",
		Category: "session",
		Action:   "Refresh the session to see its participants.",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("Invalid %s: %s", field, reason),
		Category: "validation",
		Action:   "Fix the highlighted field and retry.",
	}
}

// NewInvalidIDError はパスパラメータのIDが数値でない場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("Invalid ID: %s", raw),
		Category: "validation",
		Action:   "IDs must be positive integers.",
	}
}

// NewEmailTakenError は登録済みメールアドレスでの登録エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "Error: Email is already taken!",
		Category: "auth",
		Action:   "Log in or register with another email address.",
	}
}

// NewForbiddenUserError は他ユーザーのアカウントを操作しようとした場合のエラーを生成する。
func NewForbiddenUserError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenUser,
		Message:  "You can only manage your own account.",
		Category: "auth",
		Action:   "Log in as the account owner.",
	}
}
