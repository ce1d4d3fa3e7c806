package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/hitoshi/yogastudio/internal/model"
)

var sessionRowColumns = []string{"id", "name", "date", "description", "teacher_id", "created_at", "updated_at", "users"}

func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

func TestPostgresSessionRepo_FindAll_AggregatesParticipants(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)
	now := time.Now()

	mock.ExpectQuery(`FROM sessions s\s+LEFT JOIN participate p ON p.session_id = s.id GROUP BY s.id`).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(int64(1), "Morning flow", now, "desc", int64(1), now, now, "{2,5}").
			AddRow(int64(2), "Evening yin", now, "desc", int64(2), now, now, "{}"))

	sessions, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if got := sessions[0].Users; len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Errorf("sessions[0].Users = %v, want [2 5]", got)
	}
	if sessions[1].Users == nil || len(sessions[1].Users) != 0 {
		t.Errorf("sessions[1].Users = %#v, want empty slice", sessions[1].Users)
	}
	assertExpectations(t, mock)
}

func TestPostgresSessionRepo_FindByID(t *testing.T) {
	t.Run("取得成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresSessionRepo(db)
		now := time.Now()

		mock.ExpectQuery(`WHERE s.id = \$1 GROUP BY s.id`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns).
				AddRow(int64(1), "Morning flow", now, "desc", int64(1), now, now, "{3}"))

		s, err := repo.FindByID(context.Background(), 1)
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if s == nil || !s.HasParticipant(3) {
			t.Errorf("unexpected session: %+v", s)
		}
		assertExpectations(t, mock)
	})

	t.Run("見つからない場合はnil", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresSessionRepo(db)

		mock.ExpectQuery(`WHERE s.id = \$1`).
			WithArgs(int64(9)).
			WillReturnError(sql.ErrNoRows)

		s, err := repo.FindByID(context.Background(), 9)
		if err != nil || s != nil {
			t.Errorf("FindByID = (%v, %v), want (nil, nil)", s, err)
		}
	})
}

func TestPostgresSessionRepo_Create_WithParticipants(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)
	now := time.Now()
	date := now.Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO sessions \(name, date, description, teacher_id\)`).
		WithArgs("Morning flow", date, "desc", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectExec(`INSERT INTO participate \(user_id, session_id\)`).
		WithArgs(int64(4), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &model.Session{Name: "Morning flow", Date: date, Description: "desc", TeacherID: 1, Users: []int64{4}}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if s.ID != 10 {
		t.Errorf("ID = %d, want 10", s.ID)
	}
	assertExpectations(t, mock)
}

func TestPostgresSessionRepo_Create_UnknownTeacherRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO sessions`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Session{Name: "x", TeacherID: 99})
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("expected ErrTeacherNotFound, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("unknown teacher must not be reported as ErrNotFound: %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresSessionRepo_Create_UnknownParticipantRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectExec(`INSERT INTO participate \(user_id, session_id\)`).
		WithArgs(int64(404), int64(10)).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Session{Name: "x", TeacherID: 1, Users: []int64{404}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("unknown participant must not be reported as ErrTeacherNotFound: %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresSessionRepo_Update_UnknownTeacher(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)

	mock.ExpectQuery(`UPDATE sessions`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	err := repo.Update(context.Background(), &model.Session{ID: 5, TeacherID: 99})
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestPostgresSessionRepo_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)

	mock.ExpectQuery(`UPDATE sessions`).
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &model.Session{ID: 5, TeacherID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSessionRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)

	mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresSessionRepo_AddParticipant(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "追加成功", dbErr: nil, wantErr: nil},
		{name: "参加済みはErrDuplicate", dbErr: &pq.Error{Code: pqUniqueViolation}, wantErr: ErrDuplicate},
		{name: "存在しないユーザーはErrNotFound", dbErr: &pq.Error{Code: pqForeignKeyViolation}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresSessionRepo(db)

			exp := mock.ExpectExec(`INSERT INTO participate \(user_id, session_id\) VALUES \(\$1, \$2\)`).
				WithArgs(int64(2), int64(1))
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.AddParticipant(context.Background(), 1, 2)
			if tt.wantErr == nil && err != nil {
				t.Errorf("AddParticipant returned error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("AddParticipant error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresSessionRepo_RemoveParticipant_NotParticipating(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepo(db)

	mock.ExpectExec(`DELETE FROM participate WHERE user_id = \$1 AND session_id = \$2`).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.RemoveParticipant(context.Background(), 1, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	assertExpectations(t, mock)
}
