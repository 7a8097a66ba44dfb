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

const testColumns = `
	id, name, category, description, price, duration_minutes, created_at, updated_at
`

func (r *testRepository) Create(ctx context.Context, test *model.Test) error {
	query := `
		INSERT INTO tests (
			id, name, category, description, price, duration_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if test.ID == uuid.Nil {
		test.ID = uuid.New()
	}
	test.CreatedAt = time.Now()
	test.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		test.ID,
		test.Name,
		test.Category,
		test.Description,
		test.Price,
		test.DurationMinutes,
		test.CreatedAt,
		test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (r *testRepository) Get(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	query := `SELECT ` + testColumns + ` FROM tests WHERE id = $1`

	var test model.Test
	err := r.db.GetContext(ctx, &test, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("test: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return &test, nil
}

func (r *testRepository) Update(ctx context.Context, test *model.Test) error {
	query := `
		UPDATE tests
		SET name = $1, category = $2, description = $3, price = $4,
			duration_minutes = $5, updated_at = $6
		WHERE id = $7
	`
	test.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		test.Name,
		test.Category,
		test.Description,
		test.Price,
		test.DurationMinutes,
		test.UpdatedAt,
		test.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("test: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *testRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("test: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *testRepository) List(ctx context.Context) ([]*model.Test, error) {
	query := `SELECT ` + testColumns + ` FROM tests ORDER BY category ASC, name ASC`

	var tests []*model.Test
	if err := r.db.SelectContext(ctx, &tests, query); err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, nil
}
