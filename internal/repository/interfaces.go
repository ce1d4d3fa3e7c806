// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/yogastudio/internal/model"
)

// 更新系操作で返すセンチネルエラー。
// 取得系は従来どおり見つからない場合に nil, nil を返す。
var (
	// ErrNotFound は更新・削除対象の行が存在しない場合に返す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約違反の場合に返す。
	ErrDuplicate = errors.New("duplicate record")
	// ErrTeacherNotFound はセッションが参照する講師が存在しない場合に返す。
	ErrTeacherNotFound = errors.New("teacher not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail はメールアドレスが登録済みかどうかを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create はユーザーを作成し、採番されたIDとタイムスタンプをuserに設定する。
	// メールアドレスが重複している場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 参加情報（participate）はCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// TeacherRepository は講師データの読み取りインターフェース。
type TeacherRepository interface {
	FindAll(ctx context.Context) ([]*model.Teacher, error)
	// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Teacher, error)
}

// SessionRepository はヨガセッションの永続化インターフェース。
type SessionRepository interface {
	// FindAll は全セッションを参加者ID付きで取得する。
	FindAll(ctx context.Context) ([]*model.Session, error)

	// FindByID は指定IDのセッションを参加者ID付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Session, error)

	// Create はセッションと初期参加者を同一トランザクションで作成する。
	// 講師が存在しない場合はErrTeacherNotFound、参加者が存在しない場合はErrNotFoundを返す。
	Create(ctx context.Context, session *model.Session) error

	// Update はセッションの基本情報を更新する。参加者は変更しない。
	// セッションが存在しない場合はErrNotFound、講師が存在しない場合はErrTeacherNotFoundを返す。
	Update(ctx context.Context, session *model.Session) error

	// Delete は指定IDのセッションを削除する。
	Delete(ctx context.Context, id int64) error

	// AddParticipant は参加者を追加する。既に参加済みの場合はErrDuplicateを返す。
	AddParticipant(ctx context.Context, sessionID, userID int64) error

	// RemoveParticipant は参加者を外す。参加していない場合はErrNotFoundを返す。
	RemoveParticipant(ctx context.Context, sessionID, userID int64) error
}
