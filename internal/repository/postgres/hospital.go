package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
)

const hospitalColumns = `
	id, name, registration_number, phone, email, address, city, status,
	rating, reviews_count, roster, created_at, updated_at
`

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, name, registration_number, phone, email, address, city, status,
			rating, reviews_count, roster, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if hospital.ID == uuid.Nil {
		hospital.ID = uuid.New()
	}
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.RegistrationNumber,
		hospital.Phone,
		hospital.Email,
		hospital.Address,
		hospital.City,
		hospital.Status,
		hospital.Rating,
		hospital.ReviewsCount,
		hospital.Roster,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`

	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hospital: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *model.Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $1, phone = $2, email = $3, address = $4, city = $5,
			status = $6, rating = $7, reviews_count = $8, roster = $9, updated_at = $10
		WHERE id = $11
	`
	hospital.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		hospital.Name,
		hospital.Phone,
		hospital.Email,
		hospital.Address,
		hospital.City,
		hospital.Status,
		hospital.Rating,
		hospital.ReviewsCount,
		hospital.Roster,
		hospital.UpdatedAt,
		hospital.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("hospital: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *hospitalRepository) ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE status = $1 ORDER BY created_at DESC`

	var hospitals []*model.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query, status); err != nil {
		return nil, fmt.Errorf("failed to list hospitals by status: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) ListPopular(ctx context.Context, limit int) ([]*model.Hospital, error) {
	query := `SELECT ` + hospitalColumns + `
		FROM hospitals
		WHERE status = 'approved'
		ORDER BY rating DESC, reviews_count DESC
		LIMIT $1
	`
	var hospitals []*model.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list popular hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Hospital, error) {
	query := `SELECT ` + hospitalColumns + `
		FROM hospitals
		WHERE roster @> $1
	`
	member := fmt.Sprintf(`[{"doctor_id": %q}]`, doctorID.String())

	var hospitals []*model.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query, member); err != nil {
		return nil, fmt.Errorf("failed to find hospitals by doctor: %w", err)
	}
	return hospitals, nil
}
