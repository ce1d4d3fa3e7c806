package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/yogastudio/internal/model"
)

// PostgresTeacherRepo はPostgreSQLを使用した講師リポジトリ。
type PostgresTeacherRepo struct {
	db *sql.DB
}

// NewPostgresTeacherRepo はPostgresTeacherRepoを生成する。
func NewPostgresTeacherRepo(db *sql.DB) *PostgresTeacherRepo {
	return &PostgresTeacherRepo{db: db}
}

// FindAll は全講師をID順に取得する。
func (r *PostgresTeacherRepo) FindAll(ctx context.Context) ([]*model.Teacher, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, created_at, updated_at FROM teachers ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*model.Teacher, 0)
	for rows.Next() {
		t := &model.Teacher{}
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teachers: %w", err)
	}

	return teachers, nil
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *PostgresTeacherRepo) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, created_at, updated_at FROM teachers WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher by ID: %w", err)
	}

	return t, nil
}

// compile-time interface check
var _ TeacherRepository = (*PostgresTeacherRepo)(nil)
