package model

import (
	"slices"
	"time"
)

// Session はヨガのセッション（レッスン枠）を表す。
// Usersには参加者のユーザーIDを保持する。
type Session struct {
	ID          int64
	Name        string
	Date        time.Time
	Description string
	TeacherID   int64
	Users       []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasParticipant は指定ユーザーが参加者に含まれるかを返す。
func (s *Session) HasParticipant(userID int64) bool {
	return slices.Contains(s.Users, userID)
}
