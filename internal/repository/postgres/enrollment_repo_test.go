package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"conferencehub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	birthday := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	enrollment := &domain.Enrollment{
		UserID:   "user-1",
		Name:     "Joao",
		Document: "06459861198",
		Birthday: birthday,
		Phone:    "61 9 81617008",
		Street:   "Avenida Brigadeiro Faria Lima",
		Number:   "10",
		City:     "Sao Paulo",
		State:    "SP",
	}

	mock.ExpectQuery(`INSERT INTO enrollments`).
		WithArgs("user-1", "Joao", "06459861198", birthday, "61 9 81617008",
			"Avenida Brigadeiro Faria Lima", "10", "Sao Paulo", "SP", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("enr-1", now, now))

	repo := NewEnrollmentRepository(db)
	require.NoError(t, repo.Upsert(ctx, enrollment))
	require.Equal(t, "enr-1", enrollment.ID)
	require.Equal(t, now, enrollment.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_GetByUserID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		userID  string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "success",
			userID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, name, document, birthday, phone`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "user_id", "name", "document", "birthday", "phone",
						"street", "number", "city", "state", "neighborhood", "postal_code",
						"created_at", "updated_at",
					}).AddRow("enr-1", "user-1", "Joao", "06459861198", now, "61 9 81617008",
						"", "", "", "", "", "", now, now))
			},
		},
		{
			name:   "not found",
			userID: "user-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, name, document, birthday, phone`).
					WithArgs("user-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEnrollmentRepository(db)
			enrollment, err := repo.GetByUserID(ctx, tt.userID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, enrollment)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "enr-1", enrollment.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
