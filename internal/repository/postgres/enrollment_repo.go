package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencehub/internal/domain"
)

type enrollmentRepository struct {
	DB *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) domain.EnrollmentRepository {
	return &enrollmentRepository{
		DB: db,
	}
}

func (r *enrollmentRepository) Upsert(ctx context.Context, e *domain.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, name, document, birthday, phone, street, number, city, state, neighborhood, postal_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			document = EXCLUDED.document,
			birthday = EXCLUDED.birthday,
			phone = EXCLUDED.phone,
			street = EXCLUDED.street,
			number = EXCLUDED.number,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			neighborhood = EXCLUDED.neighborhood,
			postal_code = EXCLUDED.postal_code,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query,
		e.UserID, e.Name, e.Document, e.Birthday, e.Phone,
		e.Street, e.Number, e.City, e.State, e.Neighborhood, e.PostalCode,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *enrollmentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, name, document, birthday, phone, street, number, city, state, neighborhood, postal_code, created_at, updated_at
		FROM enrollments
		WHERE user_id = $1
	`
	e := &domain.Enrollment{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&e.ID, &e.UserID, &e.Name, &e.Document, &e.Birthday, &e.Phone,
		&e.Street, &e.Number, &e.City, &e.State, &e.Neighborhood, &e.PostalCode,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}
