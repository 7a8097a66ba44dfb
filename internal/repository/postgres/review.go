package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
)

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, author_id, author_name, target_kind, target_id, rating, comment,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.AuthorID,
		review.AuthorName,
		review.TargetKind,
		review.TargetID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListByTarget(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT id, author_id, author_name, target_kind, target_id, rating, comment,
			   created_at, updated_at
		FROM reviews
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at DESC
	`
	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, kind, targetID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Aggregate(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0) AS rating, COUNT(*) AS count
		FROM reviews
		WHERE target_kind = $1 AND target_id = $2
	`
	var row struct {
		Rating float64 `db:"rating"`
		Count  int     `db:"count"`
	}
	if err := r.db.GetContext(ctx, &row, query, kind, targetID); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return row.Rating, row.Count, nil
}
