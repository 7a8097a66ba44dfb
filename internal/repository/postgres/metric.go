package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
)

const metricColumns = `
	id, account_id, type, value, unit, note, recorded_at, created_at, updated_at
`

func (r *metricRepository) Create(ctx context.Context, metric *model.HealthMetric) error {
	query := `
		INSERT INTO health_metrics (
			id, account_id, type, value, unit, note, recorded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if metric.ID == uuid.Nil {
		metric.ID = uuid.New()
	}
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}
	metric.CreatedAt = time.Now()
	metric.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		metric.ID,
		metric.AccountID,
		metric.Type,
		metric.Value,
		metric.Unit,
		metric.Note,
		metric.RecordedAt,
		metric.CreatedAt,
		metric.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health metric: %w", err)
	}
	return nil
}

func (r *metricRepository) ListByType(ctx context.Context, accountID uuid.UUID, metricType string) ([]*model.HealthMetric, error) {
	query := `SELECT ` + metricColumns + `
		FROM health_metrics
		WHERE account_id = $1 AND type = $2
		ORDER BY recorded_at DESC
	`
	var metrics []*model.HealthMetric
	if err := r.db.SelectContext(ctx, &metrics, query, accountID, metricType); err != nil {
		return nil, fmt.Errorf("failed to list health metrics: %w", err)
	}
	return metrics, nil
}

func (r *metricRepository) LatestPerType(ctx context.Context, accountID uuid.UUID) ([]*model.HealthMetric, error) {
	query := `
		SELECT DISTINCT ON (type) ` + metricColumns + `
		FROM health_metrics
		WHERE account_id = $1
		ORDER BY type, recorded_at DESC
	`
	var metrics []*model.HealthMetric
	if err := r.db.SelectContext(ctx, &metrics, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list latest health metrics: %w", err)
	}
	return metrics, nil
}
