// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailはログイン識別子として一意である。
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Teacher はセッションを担当する講師を表す。
type Teacher struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
