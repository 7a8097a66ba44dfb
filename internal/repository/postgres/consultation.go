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

const consultationColumns = `
	id, booking_id, doctor_id, patient_id, vitals, diagnosis, notes,
	ordered_tests, follow_up_date, prescriptions, created_at, updated_at
`

func (r *consultationRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE booking_id = $1`

	var consultation model.Consultation
	err := r.db.GetContext(ctx, &consultation, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consultation: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

// Upsert keeps consultations one-to-one with their booking.
func (r *consultationRepository) Upsert(ctx context.Context, consultation *model.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, booking_id, doctor_id, patient_id, vitals, diagnosis, notes,
			ordered_tests, follow_up_date, prescriptions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (booking_id) DO UPDATE SET
			vitals = EXCLUDED.vitals,
			diagnosis = EXCLUDED.diagnosis,
			notes = EXCLUDED.notes,
			ordered_tests = EXCLUDED.ordered_tests,
			follow_up_date = EXCLUDED.follow_up_date,
			prescriptions = EXCLUDED.prescriptions,
			updated_at = EXCLUDED.updated_at
	`
	if consultation.ID == uuid.Nil {
		consultation.ID = uuid.New()
	}
	if consultation.CreatedAt.IsZero() {
		consultation.CreatedAt = time.Now()
	}
	consultation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.BookingID,
		consultation.DoctorID,
		consultation.PatientID,
		consultation.Vitals,
		consultation.Diagnosis,
		consultation.Notes,
		consultation.OrderedTests,
		consultation.FollowUpDate,
		consultation.Prescriptions,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	query := `SELECT ` + consultationColumns + `
		FROM consultations
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var consultations []*model.Consultation
	if err := r.db.SelectContext(ctx, &consultations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}
