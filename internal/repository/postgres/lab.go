package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
)

const labColumns = `
	id, name, registration_number, phone, email, address, city, status,
	rating, reviews_count, catalog, home_collection, created_at, updated_at
`

func (r *labRepository) Create(ctx context.Context, lab *model.Lab) error {
	query := `
		INSERT INTO labs (
			id, name, registration_number, phone, email, address, city, status,
			rating, reviews_count, catalog, home_collection, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if lab.ID == uuid.Nil {
		lab.ID = uuid.New()
	}
	lab.CreatedAt = time.Now()
	lab.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		lab.ID,
		lab.Name,
		lab.RegistrationNumber,
		lab.Phone,
		lab.Email,
		lab.Address,
		lab.City,
		lab.Status,
		lab.Rating,
		lab.ReviewsCount,
		lab.Catalog,
		lab.HomeCollection,
		lab.CreatedAt,
		lab.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab: %w", err)
	}
	return nil
}

func (r *labRepository) Get(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
	query := `SELECT ` + labColumns + ` FROM labs WHERE id = $1`

	var lab model.Lab
	err := r.db.GetContext(ctx, &lab, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lab: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}
	return &lab, nil
}

func (r *labRepository) Update(ctx context.Context, lab *model.Lab) error {
	query := `
		UPDATE labs
		SET name = $1, phone = $2, email = $3, address = $4, city = $5,
			status = $6, rating = $7, reviews_count = $8, catalog = $9,
			home_collection = $10, updated_at = $11
		WHERE id = $12
	`
	lab.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		lab.Name,
		lab.Phone,
		lab.Email,
		lab.Address,
		lab.City,
		lab.Status,
		lab.Rating,
		lab.ReviewsCount,
		lab.Catalog,
		lab.HomeCollection,
		lab.UpdatedAt,
		lab.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lab: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *labRepository) List(ctx context.Context, filter *model.LabFilter) ([]*model.Lab, int, error) {
	where := []string{"status = 'approved'"}
	args := []interface{}{}

	if filter.City != "" {
		args = append(args, "%"+filter.City+"%")
		where = append(where, fmt.Sprintf("city ILIKE $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM labs WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count labs: %w", err)
	}

	filter.Normalize()
	args = append(args, filter.PageSize, filter.Offset())
	query := `SELECT ` + labColumns + ` FROM labs WHERE ` + clause +
		fmt.Sprintf(" ORDER BY rating DESC, name ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var labs []*model.Lab
	if err := r.db.SelectContext(ctx, &labs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list labs: %w", err)
	}
	return labs, total, nil
}

func (r *labRepository) ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.Lab, error) {
	query := `SELECT ` + labColumns + ` FROM labs WHERE status = $1 ORDER BY created_at DESC`

	var labs []*model.Lab
	if err := r.db.SelectContext(ctx, &labs, query, status); err != nil {
		return nil, fmt.Errorf("failed to list labs by status: %w", err)
	}
	return labs, nil
}
