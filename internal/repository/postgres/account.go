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

const accountColumns = `
	id, name, phone, email, password_hash, role, approved, active,
	otp_code, otp_expires_at, entity_kind, entity_id,
	doctor_profile, health_profile, favorites, profile_image_url, city,
	created_at, updated_at
`

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (
			id, name, phone, email, password_hash, role, approved, active,
			otp_code, otp_expires_at, entity_kind, entity_id,
			doctor_profile, health_profile, favorites, profile_image_url, city,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Phone,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Approved,
		account.Active,
		account.OTPCode,
		account.OTPExpiresAt,
		account.EntityKind,
		account.EntityID,
		account.DoctorProfile,
		account.HealthProfile,
		account.Favorites,
		account.ProfileImageURL,
		account.City,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`
	return r.getOne(ctx, query, phone)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, email)
}

func (r *accountRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, email = $2, password_hash = $3, approved = $4, active = $5,
			otp_code = $6, otp_expires_at = $7, entity_kind = $8, entity_id = $9,
			doctor_profile = $10, health_profile = $11, favorites = $12,
			profile_image_url = $13, city = $14, updated_at = $15
		WHERE id = $16
	`
	account.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Approved,
		account.Active,
		account.OTPCode,
		account.OTPExpiresAt,
		account.EntityKind,
		account.EntityID,
		account.DoctorProfile,
		account.HealthProfile,
		account.Favorites,
		account.ProfileImageURL,
		account.City,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, filter *model.AccountFilter) ([]*model.Account, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM accounts WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	filter.Normalize()
	args = append(args, filter.PageSize, filter.Offset())
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var accounts []*model.Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, total, nil
}

func (r *accountRepository) ListDoctors(ctx context.Context, specialization, search string) ([]*model.Account, error) {
	where := []string{"role = 'doctor'", "approved = true"}
	args := []interface{}{}

	if specialization != "" {
		args = append(args, specialization)
		where = append(where, fmt.Sprintf("doctor_profile->>'specialization' ILIKE $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY name ASC`

	var doctors []*model.Account
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *accountRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	query := `SELECT role, COUNT(*) AS count FROM accounts GROUP BY role`

	rows := []struct {
		Role  model.Role `db:"role"`
		Count int        `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count accounts by role: %w", err)
	}

	counts := make(map[model.Role]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *accountRepository) DeleteByPhoneExcept(ctx context.Context, phone string, keep model.Role) error {
	query := `DELETE FROM accounts WHERE phone = $1 AND role <> $2`
	if _, err := r.db.ExecContext(ctx, query, phone, keep); err != nil {
		return fmt.Errorf("failed to purge accounts on phone: %w", err)
	}
	return nil
}
