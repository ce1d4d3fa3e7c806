package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/yogastudio/internal/model"
)

// 参加者IDは配列に集約して1クエリで取得する。
const sessionSelect = `
	SELECT s.id, s.name, s.date, s.description, s.teacher_id, s.created_at, s.updated_at,
	       COALESCE(array_agg(p.user_id ORDER BY p.user_id) FILTER (WHERE p.user_id IS NOT NULL), '{}') AS users
	FROM sessions s
	LEFT JOIN participate p ON p.session_id = s.id`

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	s := &model.Session{}
	var users pq.Int64Array
	err := row.Scan(
		&s.ID, &s.Name, &s.Date, &s.Description, &s.TeacherID,
		&s.CreatedAt, &s.UpdatedAt, &users,
	)
	if err != nil {
		return nil, err
	}
	s.Users = []int64(users)
	if s.Users == nil {
		s.Users = []int64{}
	}
	return s, nil
}

// FindAll は全セッションを日付順に取得する。
func (r *PostgresSessionRepo) FindAll(ctx context.Context) ([]*model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		sessionSelect+` GROUP BY s.id ORDER BY s.date, s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id int64) (*model.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		sessionSelect+` WHERE s.id = $1 GROUP BY s.id`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by ID: %w", err)
	}

	return s, nil
}

// Create はセッションと初期参加者を同一トランザクションで作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO sessions (name, date, description, teacher_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		session.Name, session.Date, session.Description, session.TeacherID,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if isPQCode(err, pqForeignKeyViolation) {
		return fmt.Errorf("teacher %d: %w", session.TeacherID, ErrTeacherNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, userID := range session.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participate (user_id, session_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, session.ID,
		)
		if isPQCode(err, pqForeignKeyViolation) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if session.Users == nil {
		session.Users = []int64{}
	}
	return nil
}

// Update はセッションの基本情報を更新する。参加者は変更しない。
func (r *PostgresSessionRepo) Update(ctx context.Context, session *model.Session) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions
		 SET name = $1, date = $2, description = $3, teacher_id = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		session.Name, session.Date, session.Description, session.TeacherID, session.ID,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("session %d: %w", session.ID, ErrNotFound)
	}
	if isPQCode(err, pqForeignKeyViolation) {
		return fmt.Errorf("teacher %d: %w", session.TeacherID, ErrTeacherNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Delete は指定IDのセッションを削除する。参加情報はCASCADE削除される。
func (r *PostgresSessionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddParticipant は参加者を追加する。既に参加済みの場合はErrDuplicateを返す。
func (r *PostgresSessionRepo) AddParticipant(ctx context.Context, sessionID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO participate (user_id, session_id) VALUES ($1, $2)`,
		userID, sessionID,
	)
	if isPQCode(err, pqUniqueViolation) {
		return fmt.Errorf("user %d in session %d: %w", userID, sessionID, ErrDuplicate)
	}
	if isPQCode(err, pqForeignKeyViolation) {
		return fmt.Errorf("user %d or session %d: %w", userID, sessionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// RemoveParticipant は参加者を外す。参加していない場合はErrNotFoundを返す。
func (r *PostgresSessionRepo) RemoveParticipant(ctx context.Context, sessionID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM participate WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %d in session %d: %w", userID, sessionID, ErrNotFound)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
