package facility

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	"github.com/labloom/marketplace-api/internal/service/notification"
	"github.com/labloom/marketplace-api/pkg/blob"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

// Service covers facility-side operations: lab catalog and reports, hospital
// rosters, and the public directory both feed from.
type Service struct {
	labs          repository.LabRepository
	hospitals     repository.HospitalRepository
	accounts      repository.AccountRepository
	bookings      repository.BookingRepository
	tests         repository.TestRepository
	storage       blob.Storage
	notifications *notification.Service
	now           func() time.Time
}

func NewService(
	labs repository.LabRepository,
	hospitals repository.HospitalRepository,
	accounts repository.AccountRepository,
	bookings repository.BookingRepository,
	tests repository.TestRepository,
	storage blob.Storage,
	notifications *notification.Service,
) *Service {
	return &Service{
		labs:          labs,
		hospitals:     hospitals,
		accounts:      accounts,
		bookings:      bookings,
		tests:         tests,
		storage:       storage,
		notifications: notifications,
		now:           time.Now,
	}
}

// labForStaff resolves the lab linked to a staff account.
func (s *Service) labForStaff(ctx context.Context, staff *model.Account) (*model.Lab, error) {
	kind, id, ok := staff.EntityRef()
	if !ok || kind != model.EntityKindLab {
		return nil, apperrors.Forbidden("account is not linked to a lab")
	}
	lab, err := s.labs.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("lab")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return lab, nil
}

// hospitalForStaff resolves the hospital linked to a staff account.
func (s *Service) hospitalForStaff(ctx context.Context, staff *model.Account) (*model.Hospital, error) {
	kind, id, ok := staff.EntityRef()
	if !ok || kind != model.EntityKindHospital {
		return nil, apperrors.Forbidden("account is not linked to a hospital")
	}
	hospital, err := s.hospitals.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("hospital")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return hospital, nil
}

// StaffLab resolves the caller's lab for callers outside the package that
// need the facility record itself.
func (s *Service) StaffLab(ctx context.Context, staff *model.Account) (*model.Lab, error) {
	return s.labForStaff(ctx, staff)
}

// StaffHospital resolves the caller's hospital for callers outside the
// package that need the facility record itself.
func (s *Service) StaffHospital(ctx context.Context, staff *model.Account) (*model.Hospital, error) {
	return s.hospitalForStaff(ctx, staff)
}

func (s *Service) labBooking(ctx context.Context, lab *model.Lab, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if booking.Type != model.BookingTypeTest {
		return nil, apperrors.InvalidRequest("reports apply to test bookings only")
	}
	if booking.LabID == nil || *booking.LabID != lab.ID {
		return nil, apperrors.Forbidden("booking belongs to another lab")
	}
	return booking, nil
}
