package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
)

const bookingColumns = `
	id, user_id, test_id, lab_id, doctor_id, booking_type, date, time,
	appointment_mode, status, amount, platform_fee, revenue,
	visit_summary, lab_report, notes, created_at, updated_at
`

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, test_id, lab_id, doctor_id, booking_type, date, time,
			appointment_mode, status, amount, platform_fee, revenue,
			visit_summary, lab_report, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.TestID,
		booking.LabID,
		booking.DoctorID,
		booking.Type,
		booking.Date,
		booking.Time,
		booking.Mode,
		booking.Status,
		booking.Amount,
		booking.PlatformFee,
		booking.Revenue,
		booking.VisitSummary,
		booking.LabReport,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, amount = $2, platform_fee = $3, revenue = $4,
			visit_summary = $5, lab_report = $6, notes = $7, time = $8,
			appointment_mode = $9, updated_at = $10
		WHERE id = $11
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.Status,
		booking.Amount,
		booking.PlatformFee,
		booking.Revenue,
		booking.VisitSummary,
		booking.LabReport,
		booking.Notes,
		booking.Time,
		booking.Mode,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.DoctorID != nil {
		args = append(args, *filter.DoctorID)
		where = append(where, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	if filter.LabID != nil {
		args = append(args, *filter.LabID)
		where = append(where, fmt.Sprintf("lab_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("booking_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	filter.Normalize()
	args = append(args, filter.PageSize, filter.Offset())
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + clause +
		fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *bookingRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE doctor_id = $1 AND date >= $2 AND date < $3
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, doctorID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to list doctor bookings for day: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListCompletedForDoctors(ctx context.Context, doctorIDs []uuid.UUID, from, to *time.Time) ([]*model.Booking, error) {
	if len(doctorIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(doctorIDs))
	for i, id := range doctorIDs {
		ids[i] = id.String()
	}

	where := []string{
		"booking_type = 'doctor'",
		"status = 'completed'",
		"doctor_id = ANY($1)",
	}
	args := []interface{}{pq.Array(ids)}

	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date DESC`

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list completed doctor bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountByType(ctx context.Context) (map[model.BookingType]int, error) {
	query := `SELECT booking_type, COUNT(*) AS count FROM bookings GROUP BY booking_type`

	rows := []struct {
		Type  model.BookingType `db:"booking_type"`
		Count int               `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count bookings by type: %w", err)
	}

	counts := make(map[model.BookingType]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
