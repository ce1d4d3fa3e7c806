// Package session はヨガセッションの管理と参加・離脱のビジネスロジックを提供する。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/repository"
	"github.com/hitoshi/yogastudio/internal/security"
)

// 入力制約
const (
	maxNameLength        = 50
	maxDescriptionLength = 2500
)

// UserFinder はユーザーの存在確認に使用する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// TeacherFinder は講師の存在確認に使用する。
type TeacherFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Teacher, error)
}

// Input はセッションの作成・更新の入力。
// Usersは作成時の初期参加者としてのみ使用し、更新時は無視する。
type Input struct {
	Name        string
	Date        time.Time
	TeacherID   int64
	Description string
	Users       []int64
}

// Service はセッション管理のサービス層。
type Service struct {
	sessionRepo repository.SessionRepository
	users       UserFinder
	teachers    TeacherFinder
	sanitizer   security.TextSanitizer
}

// NewService はServiceを生成する。
func NewService(
	sessionRepo repository.SessionRepository,
	users UserFinder,
	teachers TeacherFinder,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		users:       users,
		teachers:    teachers,
		sanitizer:   sanitizer,
	}
}

// FindAll は全セッションを返す。
func (s *Service) FindAll(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.sessionRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID は指定IDのセッションを返す。存在しない場合はSESSION_NOT_FOUNDのAPIErrorを返す。
func (s *Service) FindByID(ctx context.Context, id int64) (*model.Session, error) {
	sess, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil {
		return nil, model.NewSessionNotFoundError(id)
	}
	return sess, nil
}

// Create はセッションを作成する。
func (s *Service) Create(ctx context.Context, in Input) (*model.Session, error) {
	in = s.sanitize(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, in.TeacherID); err != nil {
		return nil, err
	}

	sess := &model.Session{
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
		TeacherID:   in.TeacherID,
		Users:       dedupe(in.Users),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		// 事前確認後に講師が削除された場合
		if errors.Is(err, repository.ErrTeacherNotFound) {
			return nil, model.NewTeacherNotFoundError(in.TeacherID)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewValidationError("users", "contains an unknown user")
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("session created",
		slog.Int64("session_id", sess.ID),
		slog.Int64("teacher_id", sess.TeacherID),
	)
	return sess, nil
}

// Update はセッションの基本情報を更新する。参加者は変更しない。
func (s *Service) Update(ctx context.Context, id int64, in Input) (*model.Session, error) {
	in = s.sanitize(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, in.TeacherID); err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:          id,
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
		TeacherID:   in.TeacherID,
		Users:       current.Users,
	}
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrTeacherNotFound) {
			return nil, model.NewTeacherNotFoundError(in.TeacherID)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewSessionNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	slog.Info("session updated", slog.Int64("session_id", id))
	return sess, nil
}

// Delete はセッションを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewSessionNotFoundError(id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session deleted", slog.Int64("session_id", id))
	return nil
}

// Participate はユーザーをセッションの参加者に追加する。
// セッションまたはユーザーが存在しない場合はNOT_FOUND、参加済みの場合はALREADY_PARTICIPATINGを返す。
func (s *Service) Participate(ctx context.Context, sessionID, userID int64) error {
	sess, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError(userID)
	}

	if sess.HasParticipant(userID) {
		return model.NewAlreadyParticipatingError()
	}

	if err := s.sessionRepo.AddParticipant(ctx, sessionID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.NewAlreadyParticipatingError()
		case errors.Is(err, repository.ErrNotFound):
			return model.NewSessionNotFoundError(sessionID)
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}

	slog.Info("user joined session",
		slog.Int64("session_id", sessionID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// NoLongerParticipate はユーザーをセッションの参加者から外す。
// セッションが存在しない場合はSESSION_NOT_FOUND、参加していない場合はNOT_PARTICIPATINGを返す。
func (s *Service) NoLongerParticipate(ctx context.Context, sessionID, userID int64) error {
	sess, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if !sess.HasParticipant(userID) {
		return model.NewNotParticipatingError()
	}

	if err := s.sessionRepo.RemoveParticipant(ctx, sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotParticipatingError()
		}
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	slog.Info("user left session",
		slog.Int64("session_id", sessionID),
		slog.Int64("user_id", userID),
	)
	return nil
}

func (s *Service) ensureTeacher(ctx context.Context, teacherID int64) error {
	t, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("failed to find teacher: %w", err)
	}
	if t == nil {
		return model.NewTeacherNotFoundError(teacherID)
	}
	return nil
}

func (s *Service) sanitize(in Input) Input {
	in.Name = s.sanitizer.Sanitize(in.Name)
	in.Description = s.sanitizer.Sanitize(in.Description)
	return in
}

func validateInput(in Input) error {
	if in.Name == "" {
		return model.NewValidationError("name", "must not be blank")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return model.NewValidationError("name", fmt.Sprintf("size must be at most %d", maxNameLength))
	}
	if in.Date.IsZero() {
		return model.NewValidationError("date", "must not be null")
	}
	if in.TeacherID <= 0 {
		return model.NewValidationError("teacher_id", "must not be null")
	}
	if in.Description == "" {
		return model.NewValidationError("description", "must not be blank")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return model.NewValidationError("description", fmt.Sprintf("size must be at most %d", maxDescriptionLength))
	}
	return nil
}

// dedupe は出現順を保ったまま重複IDを取り除く。
func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
