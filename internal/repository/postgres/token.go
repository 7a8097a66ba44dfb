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

func (r *tokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, account_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	token.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		token.Token,
		token.AccountID,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) Get(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `
		SELECT token, account_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	var rt model.RefreshToken
	err := r.db.GetContext(ctx, &rt, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("refresh token: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &rt, nil
}

// Delete reports whether this call removed the row. Concurrent deletes of
// the same token see exactly one true.
func (r *tokenRepository) Delete(ctx context.Context, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *tokenRepository) DeleteForAccount(ctx context.Context, accountID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to delete account refresh tokens: %w", err)
	}
	return nil
}
