package records

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	"github.com/labloom/marketplace-api/internal/service/notification"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

// ReportGrade buckets report outcomes for the patient-facing view.
type ReportGrade string

const (
	GradeGood       ReportGrade = "Good"
	GradeBorderline ReportGrade = "Borderline"
	GradeBad        ReportGrade = "Bad"
	GradeUnknown    ReportGrade = "Unknown"
)

// Classify maps free-text report status to a grade by substring.
func Classify(status string) ReportGrade {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "critical"), strings.Contains(s, "abnormal"):
		return GradeBad
	case strings.Contains(s, "attention"), strings.Contains(s, "follow-up"):
		return GradeBorderline
	case strings.Contains(s, "normal"):
		return GradeGood
	default:
		return GradeUnknown
	}
}

// ReportEntry is one row of the unified lab-reports view: either a test
// booking's lab report or an examination from a doctor visit.
type ReportEntry struct {
	BookingID uuid.UUID   `json:"booking_id"`
	Date      time.Time   `json:"date"`
	Name      string      `json:"name"`
	Category  string      `json:"category,omitempty"`
	Grade     ReportGrade `json:"grade"`
	Status    string      `json:"status,omitempty"`
	URL       string      `json:"url,omitempty"`
	Source    string      `json:"source"`
}

// PrescriptionEntry flattens one embedded prescription with its context.
type PrescriptionEntry struct {
	BookingID      uuid.UUID          `json:"booking_id"`
	Date           time.Time          `json:"date"`
	DoctorName     string             `json:"doctor_name,omitempty"`
	Specialization string             `json:"specialization,omitempty"`
	Prescription   model.Prescription `json:"prescription"`
}

type ReportOptions struct {
	Category string
	Grade    ReportGrade
	SortAZ   bool
}

type PrescriptionOptions struct {
	Tab            string // "actual" or "history"
	MedicationType string
	Specialization string
	SortAZ         bool
}

type Service struct {
	bookings      repository.BookingRepository
	accounts      repository.AccountRepository
	tests         repository.TestRepository
	notifications *notification.Service
	now           func() time.Time
}

func NewService(
	bookings repository.BookingRepository,
	accounts repository.AccountRepository,
	tests repository.TestRepository,
	notifications *notification.Service,
) *Service {
	return &Service{
		bookings:      bookings,
		accounts:      accounts,
		tests:         tests,
		notifications: notifications,
		now:           time.Now,
	}
}

// LabReports unions completed test bookings' reports with doctor-visit
// examinations. Pure projection over booking history.
func (s *Service) LabReports(ctx context.Context, patientID uuid.UUID, opts ReportOptions) ([]ReportEntry, error) {
	bookings, err := s.patientBookings(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var entries []ReportEntry
	for _, b := range bookings {
		switch b.Type {
		case model.BookingTypeTest:
			if b.Status != model.BookingStatusCompleted || b.LabReport.IsZero() {
				continue
			}
			entry := ReportEntry{
				BookingID: b.ID,
				Date:      reportDate(b),
				Grade:     Classify(b.LabReport.Status),
				Status:    b.LabReport.Status,
				URL:       b.LabReport.URL,
				Source:    "lab_report",
			}
			if b.TestID != nil {
				if test, err := s.tests.Get(ctx, *b.TestID); err == nil {
					entry.Name = test.Name
					entry.Category = test.Category
				}
			}
			entries = append(entries, entry)

		case model.BookingTypeDoctor:
			for _, exam := range b.VisitSummary.Examinations {
				examDate := b.Date
				if exam.Date != nil {
					examDate = *exam.Date
				}
				entries = append(entries, ReportEntry{
					BookingID: b.ID,
					Date:      examDate,
					Name:      exam.Name,
					Grade:     Classify(exam.Result),
					Status:    exam.Result,
					Source:    "examination",
				})
			}
		}
	}

	filtered := entries[:0]
	for _, e := range entries {
		if opts.Category != "" && !strings.EqualFold(e.Category, opts.Category) {
			continue
		}
		if opts.Grade != "" && e.Grade != opts.Grade {
			continue
		}
		filtered = append(filtered, e)
	}

	if opts.SortAZ {
		sort.Slice(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	} else {
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.After(filtered[j].Date) })
	}
	return filtered, nil
}

// Prescriptions flattens every embedded prescription across the patient's
// doctor bookings. The actual/history split compares the end date to now.
func (s *Service) Prescriptions(ctx context.Context, patientID uuid.UUID, opts PrescriptionOptions) ([]PrescriptionEntry, error) {
	bookings, err := s.patientBookings(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doctorCache := make(map[uuid.UUID]*model.Account)

	var entries []PrescriptionEntry
	for _, b := range bookings {
		if b.Type != model.BookingTypeDoctor {
			continue
		}
		for _, p := range b.VisitSummary.Prescriptions {
			entry := PrescriptionEntry{
				BookingID:    b.ID,
				Date:         b.Date,
				Prescription: p,
			}
			if b.DoctorID != nil {
				doctor, ok := doctorCache[*b.DoctorID]
				if !ok {
					doctor, _ = s.accounts.Get(ctx, *b.DoctorID)
					doctorCache[*b.DoctorID] = doctor
				}
				if doctor != nil {
					entry.DoctorName = doctor.Name
					entry.Specialization = doctor.DoctorProfile.Specialization
				}
			}

			switch opts.Tab {
			case "actual":
				if !p.Active(now) {
					continue
				}
			case "history":
				if p.Active(now) {
					continue
				}
			}
			if opts.MedicationType != "" && !strings.EqualFold(p.Type, opts.MedicationType) {
				continue
			}
			if opts.Specialization != "" && !strings.EqualFold(entry.Specialization, opts.Specialization) {
				continue
			}
			entries = append(entries, entry)
		}
	}

	if opts.SortAZ {
		sort.Slice(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Prescription.Medication) < strings.ToLower(entries[j].Prescription.Medication)
		})
	} else {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	}
	return entries, nil
}

// RequestRefill flags the prescription and notifies the prescribing doctor.
func (s *Service) RequestRefill(ctx context.Context, patient *model.Account, bookingID, prescriptionID uuid.UUID) error {
	booking, p, err := s.ownedPrescription(ctx, patient.ID, bookingID, prescriptionID)
	if err != nil {
		return err
	}

	p.RefillStatus = model.RefillStatusRequested
	if err := s.bookings.Update(ctx, booking); err != nil {
		return apperrors.Storage(err)
	}

	if s.notifications != nil && booking.DoctorID != nil {
		_, _ = s.notifications.Notify(ctx, *booking.DoctorID, model.NotificationRefillRequested,
			"Refill requested",
			patient.Name+" requested a refill of "+p.Medication)
	}
	return nil
}

// SetReminder stores reminder settings on the embedded prescription. A nil
// settings value cancels the reminder.
func (s *Service) SetReminder(ctx context.Context, patient *model.Account, bookingID, prescriptionID uuid.UUID, settings *model.ReminderSettings) error {
	booking, p, err := s.ownedPrescription(ctx, patient.ID, bookingID, prescriptionID)
	if err != nil {
		return err
	}

	p.Reminder = settings
	if err := s.bookings.Update(ctx, booking); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (s *Service) ownedPrescription(ctx context.Context, patientID, bookingID, prescriptionID uuid.UUID) (*model.Booking, *model.Prescription, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, nil, apperrors.Storage(err)
	}
	if booking.UserID != patientID {
		return nil, nil, apperrors.Forbidden("booking belongs to another patient")
	}

	for i := range booking.VisitSummary.Prescriptions {
		if booking.VisitSummary.Prescriptions[i].ID == prescriptionID {
			return booking, &booking.VisitSummary.Prescriptions[i], nil
		}
	}
	return nil, nil, apperrors.NotFound("prescription")
}

func (s *Service) patientBookings(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	filter := &model.BookingFilter{UserID: &patientID}
	filter.PageSize = 100
	bookings, _, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return bookings, nil
}

func reportDate(b *model.Booking) time.Time {
	if b.LabReport.ResultDate != nil {
		return *b.LabReport.ResultDate
	}
	return b.Date
}
