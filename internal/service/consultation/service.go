package consultation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

type Service struct {
	consultations repository.ConsultationRepository
	bookings      repository.BookingRepository
}

func NewService(consultations repository.ConsultationRepository, bookings repository.BookingRepository) *Service {
	return &Service{consultations: consultations, bookings: bookings}
}

type SaveRecordsRequest struct {
	Vitals       model.Vitals       `json:"vitals,omitempty"`
	Diagnosis    string             `json:"diagnosis,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	OrderedTests model.OrderedTests `json:"ordered_tests,omitempty"`
	FollowUpDate *time.Time         `json:"follow_up_date,omitempty"`
}

// SaveRecords upserts the structured record for a doctor visit. The
// consultation is created lazily on first save, one per booking.
func (s *Service) SaveRecords(ctx context.Context, doctor *model.Account, bookingID uuid.UUID, req *SaveRecordsRequest) (*model.Consultation, error) {
	booking, err := s.ownedBooking(ctx, doctor, bookingID)
	if err != nil {
		return nil, err
	}

	consultation, err := s.loadOrInit(ctx, booking, doctor.ID)
	if err != nil {
		return nil, err
	}

	consultation.Vitals = req.Vitals
	consultation.Diagnosis = req.Diagnosis
	consultation.Notes = req.Notes
	consultation.OrderedTests = req.OrderedTests
	consultation.FollowUpDate = req.FollowUpDate

	if err := s.consultations.Upsert(ctx, consultation); err != nil {
		return nil, apperrors.Storage(err)
	}
	return consultation, nil
}

// Prescribe stores the prescriptions on the consultation and mirrors them
// into the booking's visit summary, which older clients still read.
func (s *Service) Prescribe(ctx context.Context, doctor *model.Account, bookingID uuid.UUID, prescriptions []model.Prescription) (*model.Consultation, error) {
	booking, err := s.ownedBooking(ctx, doctor, bookingID)
	if err != nil {
		return nil, err
	}

	for i := range prescriptions {
		if prescriptions[i].Medication == "" {
			return nil, apperrors.InvalidRequest("medication is required on every prescription")
		}
		if prescriptions[i].ID == uuid.Nil {
			prescriptions[i].ID = uuid.New()
		}
	}

	consultation, err := s.loadOrInit(ctx, booking, doctor.ID)
	if err != nil {
		return nil, err
	}
	consultation.Prescriptions = prescriptions

	if err := s.consultations.Upsert(ctx, consultation); err != nil {
		return nil, apperrors.Storage(err)
	}

	booking.VisitSummary.Prescriptions = prescriptions
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}
	return consultation, nil
}

// PatientHistory lists a patient's consultations for a treating doctor. Any
// shared booking authorizes access.
func (s *Service) PatientHistory(ctx context.Context, doctor *model.Account, patientID uuid.UUID) ([]*model.Consultation, error) {
	filter := &model.BookingFilter{
		UserID:   &patientID,
		DoctorID: &doctor.ID,
		Type:     model.BookingTypeDoctor,
	}
	filter.PageSize = 1
	shared, _, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if len(shared) == 0 {
		return nil, apperrors.Forbidden("no treating relationship with this patient")
	}

	consultations, err := s.consultations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return consultations, nil
}

func (s *Service) ownedBooking(ctx context.Context, doctor *model.Account, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if booking.Type != model.BookingTypeDoctor {
		return nil, apperrors.InvalidRequest("consultations apply to doctor bookings only")
	}
	if booking.DoctorID == nil || *booking.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden("booking belongs to another doctor")
	}
	return booking, nil
}

func (s *Service) loadOrInit(ctx context.Context, booking *model.Booking, doctorID uuid.UUID) (*model.Consultation, error) {
	consultation, err := s.consultations.GetByBooking(ctx, booking.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Consultation{
			BookingID: booking.ID,
			DoctorID:  doctorID,
			PatientID: booking.UserID,
		}, nil
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return consultation, nil
}
