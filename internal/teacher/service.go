// Package teacher は講師情報の参照を提供する。
package teacher

import (
	"context"
	"fmt"

	"github.com/hitoshi/yogastudio/internal/model"
	"github.com/hitoshi/yogastudio/internal/repository"
)

// Service は講師の参照サービス。
type Service struct {
	teacherRepo repository.TeacherRepository
}

// NewService はServiceを生成する。
func NewService(teacherRepo repository.TeacherRepository) *Service {
	return &Service{teacherRepo: teacherRepo}
}

// FindAll は全講師を返す。
func (s *Service) FindAll(ctx context.Context) ([]*model.Teacher, error) {
	teachers, err := s.teacherRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID は指定IDの講師を返す。存在しない場合はTEACHER_NOT_FOUNDのAPIErrorを返す。
func (s *Service) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	t, err := s.teacherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if t == nil {
		return nil, model.NewTeacherNotFoundError(id)
	}
	return t, nil
}
