package facility

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/validator"
)

type RosterRequest struct {
	DoctorID   uuid.UUID `json:"doctor_id" binding:"required"`
	Department string    `json:"department,omitempty"`
}

type SlotAssignmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	Date     string    `json:"date" binding:"required"`
	Times    []string  `json:"times" binding:"required"`
}

// DashboardStats is the hospital home-screen summary.
type DashboardStats struct {
	RosterSize        int   `json:"roster_size"`
	TodayAppointments int   `json:"today_appointments"`
	TotalRevenue      int64 `json:"total_revenue"`
}

// Roster lists the hospital's associated doctors.
func (s *Service) Roster(ctx context.Context, staff *model.Account) (model.AssociatedDoctors, error) {
	hospital, err := s.hospitalForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}
	return hospital.Roster, nil
}

// AddToRoster associates a verified doctor with the hospital and mirrors the
// affiliation onto the doctor's profile so the public listing shows it.
func (s *Service) AddToRoster(ctx context.Context, staff *model.Account, req *RosterRequest) (*model.AssociatedDoctor, error) {
	hospital, err := s.hospitalForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	doctor, err := s.accounts.Get(ctx, req.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if doctor.Role != model.RoleDoctor {
		return nil, apperrors.InvalidRequest("account is not a doctor")
	}

	if _, ok := hospital.Roster.Find(req.DoctorID); ok {
		return nil, apperrors.Conflict("doctor already on roster")
	}

	entry := model.AssociatedDoctor{
		DoctorID:   doctor.ID,
		Name:       doctor.Name,
		Department: req.Department,
		Active:     true,
	}
	hospital.Roster = append(hospital.Roster, entry)
	if err := s.hospitals.Update(ctx, hospital); err != nil {
		return nil, apperrors.Storage(err)
	}

	doctor.DoctorProfile.Affiliations = append(doctor.DoctorProfile.Affiliations, model.Affiliation{
		HospitalID:   hospital.ID,
		HospitalName: hospital.Name,
		Department:   req.Department,
	})
	if err := s.accounts.Update(ctx, doctor); err != nil {
		return nil, apperrors.Storage(err)
	}
	return &entry, nil
}

// RemoveFromRoster drops the association and the mirrored affiliation.
func (s *Service) RemoveFromRoster(ctx context.Context, staff *model.Account, doctorID uuid.UUID) error {
	hospital, err := s.hospitalForStaff(ctx, staff)
	if err != nil {
		return err
	}

	found := false
	for i := range hospital.Roster {
		if hospital.Roster[i].DoctorID == doctorID {
			hospital.Roster = append(hospital.Roster[:i], hospital.Roster[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return apperrors.NotFound("roster entry")
	}
	if err := s.hospitals.Update(ctx, hospital); err != nil {
		return apperrors.Storage(err)
	}

	doctor, err := s.accounts.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.Storage(err)
	}
	affiliations := doctor.DoctorProfile.Affiliations[:0]
	for _, a := range doctor.DoctorProfile.Affiliations {
		if a.HospitalID != hospital.ID {
			affiliations = append(affiliations, a)
		}
	}
	doctor.DoctorProfile.Affiliations = affiliations
	if err := s.accounts.Update(ctx, doctor); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// AssignSlots replaces the hospital-assigned appointment times for a doctor
// on one calendar day. These merge with the default grid when patients look
// up availability.
func (s *Service) AssignSlots(ctx context.Context, staff *model.Account, req *SlotAssignmentRequest) error {
	hospital, err := s.hospitalForStaff(ctx, staff)
	if err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return apperrors.InvalidRequest("date must be YYYY-MM-DD")
	}
	for _, t := range req.Times {
		if !validator.ValidSlotTime(t) {
			return apperrors.InvalidRequest("slot times must be HH:MM")
		}
	}

	for i := range hospital.Roster {
		if hospital.Roster[i].DoctorID != req.DoctorID {
			continue
		}
		if hospital.Roster[i].Slots == nil {
			hospital.Roster[i].Slots = make(map[string][]string)
		}
		hospital.Roster[i].Slots[req.Date] = req.Times
		if err := s.hospitals.Update(ctx, hospital); err != nil {
			return apperrors.Storage(err)
		}
		return nil
	}
	return apperrors.NotFound("roster entry")
}

// Dashboard aggregates today's appointments and all-time revenue across the
// hospital's roster.
func (s *Service) Dashboard(ctx context.Context, staff *model.Account) (*DashboardStats, error) {
	hospital, err := s.hospitalForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{RosterSize: len(hospital.Roster)}

	var doctorIDs []uuid.UUID
	for _, entry := range hospital.Roster {
		if entry.Active {
			doctorIDs = append(doctorIDs, entry.DoctorID)
		}
	}
	if len(doctorIDs) == 0 {
		return stats, nil
	}

	completed, err := s.bookings.ListCompletedForDoctors(ctx, doctorIDs, nil, nil)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	for _, b := range completed {
		stats.TotalRevenue += b.HospitalRevenue()
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, id := range doctorIDs {
		todays, err := s.bookings.ListForDoctorDay(ctx, id, dayStart, dayEnd)
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		for _, b := range todays {
			if b.Status != model.BookingStatusCancelled {
				stats.TodayAppointments++
			}
		}
	}
	return stats, nil
}
