package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByPhone(ctx context.Context, phone string) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
		Update(ctx context.Context, account *model.Account) error
		List(ctx context.Context, filter *model.AccountFilter) ([]*model.Account, int, error)
		ListDoctors(ctx context.Context, specialization, search string) ([]*model.Account, error)
		CountByRole(ctx context.Context) (map[model.Role]int, error)
		// DeleteByPhoneExcept removes every account on the phone whose role
		// differs from keep. Used by the admin bootstrap.
		DeleteByPhoneExcept(ctx context.Context, phone string, keep model.Role) error
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
		List(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int, error)
		// ListForDoctorDay returns the doctor's bookings with date in
		// [dayStart, dayEnd), regardless of status.
		ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Booking, error)
		// ListCompletedForDoctors returns completed doctor-type bookings for
		// the given doctors, optionally bounded by date.
		ListCompletedForDoctors(ctx context.Context, doctorIDs []uuid.UUID, from, to *time.Time) ([]*model.Booking, error)
		CountByType(ctx context.Context) (map[model.BookingType]int, error)
	}

	LabRepository interface {
		Create(ctx context.Context, lab *model.Lab) error
		Get(ctx context.Context, id uuid.UUID) (*model.Lab, error)
		Update(ctx context.Context, lab *model.Lab) error
		List(ctx context.Context, filter *model.LabFilter) ([]*model.Lab, int, error)
		ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.Lab, error)
	}

	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		Update(ctx context.Context, hospital *model.Hospital) error
		ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.Hospital, error)
		ListPopular(ctx context.Context, limit int) ([]*model.Hospital, error)
		// FindByDoctor returns hospitals whose roster includes the doctor.
		FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Hospital, error)
	}

	TestRepository interface {
		Create(ctx context.Context, test *model.Test) error
		Get(ctx context.Context, id uuid.UUID) (*model.Test, error)
		Update(ctx context.Context, test *model.Test) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Test, error)
	}

	ConsultationRepository interface {
		GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Consultation, error)
		Upsert(ctx context.Context, consultation *model.Consultation) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error)
	}

	MessageRepository interface {
		Create(ctx context.Context, message *model.Message) error
		ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Message, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		ListByTarget(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) ([]*model.Review, error)
		Aggregate(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) (float64, int, error)
	}

	TokenRepository interface {
		Create(ctx context.Context, token *model.RefreshToken) error
		Get(ctx context.Context, token string) (*model.RefreshToken, error)
		// Delete reports whether this call removed the row, so concurrent
		// consumers of the same token can be serialized (first wins).
		Delete(ctx context.Context, token string) (bool, error)
		DeleteForAccount(ctx context.Context, accountID uuid.UUID) error
	}

	MetricRepository interface {
		Create(ctx context.Context, metric *model.HealthMetric) error
		ListByType(ctx context.Context, accountID uuid.UUID, metricType string) ([]*model.HealthMetric, error)
		LatestPerType(ctx context.Context, accountID uuid.UUID) ([]*model.HealthMetric, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
	}
)
