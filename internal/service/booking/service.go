package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/config"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/metrics"
)

type Service struct {
	bookings  repository.BookingRepository
	accounts  repository.AccountRepository
	tests     repository.TestRepository
	hospitals repository.HospitalRepository
	cfg       config.BookingConfig
	metrics   *metrics.Metrics
}

func NewService(
	bookings repository.BookingRepository,
	accounts repository.AccountRepository,
	tests repository.TestRepository,
	hospitals repository.HospitalRepository,
	cfg config.BookingConfig,
	m *metrics.Metrics,
) *Service {
	return &Service{
		bookings:  bookings,
		accounts:  accounts,
		tests:     tests,
		hospitals: hospitals,
		cfg:       cfg,
		metrics:   m,
	}
}

// computeRevenue allocates the booking amount. Test bookings pay the fixed
// platform fee out of the amount (never going negative); doctor bookings
// attribute the whole fee to the hospital. Computed once at creation and
// never recomputed.
func (s *Service) computeRevenue(bookingType model.BookingType, amount int64) (model.Revenue, int64) {
	switch bookingType {
	case model.BookingTypeTest:
		fee := s.cfg.PlatformFee
		labAmount := amount - fee
		if labAmount < 0 {
			labAmount = 0
		}
		adminAmount := fee
		return model.Revenue{
			LabAmount:   &labAmount,
			AdminAmount: &adminAmount,
		}, fee
	default:
		hospitalAmount := amount
		return model.Revenue{
			HospitalAmount: &hospitalAmount,
		}, 0
	}
}

func (s *Service) CreateBooking(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	if req.Date == nil {
		return nil, apperrors.InvalidRequest("date is required")
	}

	bookingType := req.Type
	if bookingType == "" {
		bookingType = model.BookingTypeTest
	}

	booking := &model.Booking{
		UserID: userID,
		Type:   bookingType,
		Date:   *req.Date,
		Time:   req.Time,
		Amount: req.Amount,
		Status: model.BookingStatusPending,
	}

	switch bookingType {
	case model.BookingTypeDoctor:
		if req.DoctorID == nil {
			return nil, apperrors.InvalidRequest("doctor_id is required for doctor bookings")
		}
		if req.Time == nil || *req.Time == "" {
			return nil, apperrors.InvalidRequest("time is required for doctor bookings")
		}
		if req.Mode == nil || !req.Mode.Valid() {
			return nil, apperrors.InvalidRequest("appointment_mode must be In-person or Video call")
		}
		doctor, err := s.accounts.Get(ctx, *req.DoctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor")
			}
			return nil, apperrors.Storage(err)
		}
		if doctor.Role != model.RoleDoctor {
			return nil, apperrors.InvalidRequest("referenced account is not a doctor")
		}
		booking.DoctorID = req.DoctorID
		booking.Mode = req.Mode

	case model.BookingTypeTest:
		if req.TestID == nil {
			return nil, apperrors.InvalidRequest("test_id is required for test bookings")
		}
		if _, err := s.tests.Get(ctx, *req.TestID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("test")
			}
			return nil, apperrors.Storage(err)
		}
		booking.TestID = req.TestID
		booking.LabID = req.LabID

	default:
		return nil, apperrors.InvalidRequest("booking_type must be test or doctor")
	}

	booking.Revenue, booking.PlatformFee = s.computeRevenue(bookingType, booking.Amount)

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.WithLabelValues(string(bookingType)).Inc()
		if booking.PlatformFee > 0 {
			s.metrics.PlatformFeeTotal.Add(float64(booking.PlatformFee))
		}
	}
	return booking, nil
}

// CreateOfflineBooking records a walk-in test booking, provisioning a patient
// account for the phone if none exists.
func (s *Service) CreateOfflineBooking(ctx context.Context, staff *model.Account, req *model.OfflineBookingRequest) (*model.Booking, error) {
	if req.TestID == nil || req.Date == nil || req.Phone == "" {
		return nil, apperrors.InvalidRequest("phone, test_id and date are required")
	}

	patient, err := s.accounts.GetByPhone(ctx, req.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		name := req.Name
		if name == "" {
			name = "Guest User"
		}
		patient = &model.Account{
			Name:     name,
			Phone:    req.Phone,
			Role:     model.RolePatient,
			Approved: true,
			Active:   true,
		}
		if err := s.accounts.Create(ctx, patient); err != nil {
			return nil, apperrors.Storage(err)
		}
	} else if err != nil {
		return nil, apperrors.Storage(err)
	}

	var labID *uuid.UUID
	if kind, id, ok := staff.EntityRef(); ok && kind == model.EntityKindLab {
		labID = &id
	}

	return s.CreateBooking(ctx, patient.ID, &model.CreateBookingRequest{
		Type:   model.BookingTypeTest,
		Date:   req.Date,
		TestID: req.TestID,
		LabID:  labID,
		Amount: req.Amount,
	})
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return booking, nil
}

// UpdateStatus sets any named status. There is no enforced transition table;
// doctors may only touch their own bookings.
func (s *Service) UpdateStatus(ctx context.Context, actor *model.Account, bookingID uuid.UUID, req *model.UpdateStatusRequest) (*model.Booking, error) {
	if !req.Status.Valid() {
		return nil, apperrors.InvalidRequest(fmt.Sprintf("unknown status %q", req.Status))
	}

	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actor.Role == model.RoleDoctor {
		if booking.DoctorID == nil || *booking.DoctorID != actor.ID {
			return nil, apperrors.Forbidden("booking belongs to another doctor")
		}
	}

	booking.Status = req.Status
	if req.Reason != "" {
		booking.Notes = &req.Reason
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}
	return booking, nil
}

// CompleteVisit replaces the visit summary wholesale and forces the booking
// to completed. Calling it again with the same payload is a no-op.
func (s *Service) CompleteVisit(ctx context.Context, actor *model.Account, bookingID uuid.UUID, summary model.VisitSummary) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Type != model.BookingTypeDoctor {
		return nil, apperrors.InvalidRequest("visit summaries apply to doctor bookings only")
	}
	if actor.Role == model.RoleDoctor {
		if booking.DoctorID == nil || *booking.DoctorID != actor.ID {
			return nil, apperrors.Forbidden("booking belongs to another doctor")
		}
	}

	booking.VisitSummary = summary
	booking.Status = model.BookingStatusCompleted

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.metrics != nil {
		s.metrics.BookingsCompleted.Inc()
	}
	return booking, nil
}

// Slots returns the doctor's candidate times for a calendar day with
// availability flags. The default grid always runs; hospital-assigned
// per-day lists are merged in when present. A slot is unavailable iff its
// string equals a booked time.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.Slot, error) {
	candidates, err := s.slotGrid()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	hospitals, err := s.hospitals.FindByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	day := date.Format("2006-01-02")
	for _, hospital := range hospitals {
		entry, ok := hospital.Roster.Find(doctorID)
		if !ok || !entry.Active {
			continue
		}
		for _, assigned := range entry.Slots[day] {
			if !containsString(candidates, assigned) {
				candidates = append(candidates, assigned)
			}
		}
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.bookings.ListForDoctorDay(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	booked := make(map[string]struct{})
	for _, b := range bookings {
		if b.Status == model.BookingStatusCancelled || b.Status == model.BookingStatusTestNotDone {
			continue
		}
		if b.Time != nil && *b.Time != "" {
			booked[*b.Time] = struct{}{}
		} else {
			booked[b.Date.Format("15:04")] = struct{}{}
		}
	}

	slots := make([]model.Slot, len(candidates))
	for i, t := range candidates {
		_, taken := booked[t]
		slots[i] = model.Slot{Time: t, IsAvailable: !taken}
	}
	return slots, nil
}

// slotGrid generates the fixed candidate times, start through end inclusive.
func (s *Service) slotGrid() ([]string, error) {
	start, err := time.Parse("15:04", s.cfg.SlotStart)
	if err != nil {
		return nil, fmt.Errorf("invalid slot start: %w", err)
	}
	end, err := time.Parse("15:04", s.cfg.SlotEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid slot end: %w", err)
	}

	var grid []string
	for t := start; !t.After(end); t = t.Add(s.cfg.SlotInterval) {
		grid = append(grid, t.Format("15:04"))
	}
	return grid, nil
}

func (s *Service) MyBookings(ctx context.Context, userID uuid.UUID, filter *model.BookingFilter) ([]*model.Booking, int, error) {
	filter.UserID = &userID
	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return bookings, total, nil
}

func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID, filter *model.BookingFilter) ([]*model.Booking, int, error) {
	filter.DoctorID = &doctorID
	filter.Type = model.BookingTypeDoctor
	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return bookings, total, nil
}

func (s *Service) LabBookings(ctx context.Context, labID uuid.UUID, filter *model.BookingFilter) ([]*model.Booking, int, error) {
	filter.LabID = &labID
	filter.Type = model.BookingTypeTest
	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return bookings, total, nil
}

// PendingLabQueue is the lab worklist: test bookings awaiting collection.
func (s *Service) PendingLabQueue(ctx context.Context, labID uuid.UUID) ([]*model.Booking, error) {
	filter := &model.BookingFilter{
		LabID:  &labID,
		Type:   model.BookingTypeTest,
		Status: model.BookingStatusPending,
	}
	filter.PageSize = 100
	bookings, _, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return bookings, nil
}

func (s *Service) HospitalAppointments(ctx context.Context, hospital *model.Hospital, filter *model.BookingFilter) ([]*model.Booking, error) {
	var all []*model.Booking
	for _, entry := range hospital.Roster {
		if !entry.Active {
			continue
		}
		doctorID := entry.DoctorID
		f := *filter
		f.DoctorID = &doctorID
		f.Type = model.BookingTypeDoctor
		bookings, _, err := s.bookings.List(ctx, &f)
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		all = append(all, bookings...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	return all, nil
}

// VisitSummaryOptions filters the patient's completed-visit listing.
type VisitSummaryOptions struct {
	Specialization string
	Query          string
	SortAZ         bool
}

// VisitSummaries lists the patient's completed doctor visits that carry a
// summary, enriched with the treating doctor's name and specialization.
func (s *Service) VisitSummaries(ctx context.Context, userID uuid.UUID, opts VisitSummaryOptions) ([]*model.VisitRecord, error) {
	filter := &model.BookingFilter{
		UserID: &userID,
		Type:   model.BookingTypeDoctor,
		Status: model.BookingStatusCompleted,
	}
	filter.PageSize = 100

	bookings, _, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var records []*model.VisitRecord
	for _, b := range bookings {
		if b.VisitSummary.IsZero() {
			continue
		}
		record := &model.VisitRecord{
			BookingID: b.ID,
			Date:      b.Date,
			DoctorID:  b.DoctorID,
			Summary:   b.VisitSummary,
		}
		if b.DoctorID != nil {
			if doctor, err := s.accounts.Get(ctx, *b.DoctorID); err == nil {
				record.DoctorName = doctor.Name
				record.Specialization = doctor.DoctorProfile.Specialization
			}
		}

		if opts.Specialization != "" && !strings.EqualFold(record.Specialization, opts.Specialization) {
			continue
		}
		if opts.Query != "" && !matchesQuery(record, opts.Query) {
			continue
		}
		records = append(records, record)
	}

	if opts.SortAZ {
		sort.Slice(records, func(i, j int) bool {
			return strings.ToLower(records[i].DoctorName) < strings.ToLower(records[j].DoctorName)
		})
	} else {
		sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	}
	return records, nil
}

func matchesQuery(record *model.VisitRecord, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(record.DoctorName), q) ||
		strings.Contains(strings.ToLower(record.Summary.Diagnosis), q) ||
		strings.Contains(strings.ToLower(record.Summary.History), q)
}

// HospitalFinance sums the hospital share of completed doctor bookings per
// roster doctor, falling back to the raw amount when no breakdown exists.
func (s *Service) HospitalFinance(ctx context.Context, hospital *model.Hospital, from, to *time.Time) ([]model.DoctorFinance, error) {
	var doctorIDs []uuid.UUID
	names := make(map[uuid.UUID]string)
	for _, entry := range hospital.Roster {
		doctorIDs = append(doctorIDs, entry.DoctorID)
		names[entry.DoctorID] = entry.Name
	}
	if len(doctorIDs) == 0 {
		return nil, nil
	}

	bookings, err := s.bookings.ListCompletedForDoctors(ctx, doctorIDs, from, to)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	totals := make(map[uuid.UUID]*model.DoctorFinance)
	for _, b := range bookings {
		if b.DoctorID == nil {
			continue
		}
		row, ok := totals[*b.DoctorID]
		if !ok {
			row = &model.DoctorFinance{DoctorID: *b.DoctorID, DoctorName: names[*b.DoctorID]}
			totals[*b.DoctorID] = row
		}
		row.Total += b.HospitalRevenue()
		row.Bookings++
	}

	report := make([]model.DoctorFinance, 0, len(totals))
	for _, row := range totals {
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].DoctorName < report[j].DoctorName })
	return report, nil
}

// Analytics is the admin overview: account counts by role, booking counts
// by type.
type Analytics struct {
	AccountsByRole map[model.Role]int        `json:"accounts_by_role"`
	BookingsByType map[model.BookingType]int `json:"bookings_by_type"`
}

func (s *Service) SystemAnalytics(ctx context.Context) (*Analytics, error) {
	byRole, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	byType, err := s.bookings.CountByType(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &Analytics{AccountsByRole: byRole, BookingsByType: byType}, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
