// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/repository"
)

// Service はユーザー管理のサービス層。
// 参照とアカウント削除のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// FindByID は指定IDのユーザーを返す。
func (s *Service) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// Delete はユーザーを削除する。
// 削除できるのは本人のアカウントのみで、requesterEmailが対象ユーザーのメールアドレスと
// 一致しない場合はFORBIDDEN_USERのAPIErrorを返す。
// 参加情報はCASCADE削除される。
func (s *Service) Delete(ctx context.Context, id int64, requesterEmail string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Email != requesterEmail {
		slog.Warn("ユーザー削除を拒否しました",
			slog.Int64("user_id", id),
			slog.String("requester", requesterEmail),
		)
		return model.NewForbiddenUserError()
	}

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError(id)
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザーを削除しました", slog.Int64("user_id", id))
	return nil
}
