package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type BookingType string

const (
	BookingTypeTest   BookingType = "test"
	BookingTypeDoctor BookingType = "doctor"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusTestNotDone BookingStatus = "test_not_done"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusTestNotDone:
		return true
	}
	return false
}

type AppointmentMode string

const (
	ModeInPerson  AppointmentMode = "In-person"
	ModeVideoCall AppointmentMode = "Video call"
)

func (m AppointmentMode) Valid() bool {
	return m == ModeInPerson || m == ModeVideoCall
}

// Revenue is the per-booking allocation computed once at creation. Exactly
// one of LabAmount/HospitalAmount is set depending on the booking type.
type Revenue struct {
	LabAmount      *int64 `json:"lab_amount,omitempty"`
	HospitalAmount *int64 `json:"hospital_amount,omitempty"`
	AdminAmount    *int64 `json:"admin_amount,omitempty"`
}

func (r Revenue) IsZero() bool {
	return r.LabAmount == nil && r.HospitalAmount == nil && r.AdminAmount == nil
}

func (r Revenue) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return jsonbValue(r)
}

func (r *Revenue) Scan(src interface{}) error {
	return jsonbScan(src, r)
}

// Booking is the central transactional record for both lab tests and doctor
// visits. Embedded documents are stored as JSONB.
type Booking struct {
	Base
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	TestID       *uuid.UUID       `json:"test_id,omitempty" db:"test_id"`
	LabID        *uuid.UUID       `json:"lab_id,omitempty" db:"lab_id"`
	DoctorID     *uuid.UUID       `json:"doctor_id,omitempty" db:"doctor_id"`
	Type         BookingType      `json:"booking_type" db:"booking_type"`
	Date         time.Time        `json:"date" db:"date"`
	Time         *string          `json:"time,omitempty" db:"time"`
	Mode         *AppointmentMode `json:"appointment_mode,omitempty" db:"appointment_mode"`
	Status       BookingStatus    `json:"status" db:"status"`
	Amount       int64            `json:"amount" db:"amount"`
	PlatformFee  int64            `json:"platform_fee" db:"platform_fee"`
	Revenue      Revenue          `json:"revenue,omitempty" db:"revenue"`
	VisitSummary VisitSummary     `json:"visit_summary,omitempty" db:"visit_summary"`
	LabReport    LabReport        `json:"lab_report,omitempty" db:"lab_report"`
	Notes        *string          `json:"notes,omitempty" db:"notes"`
}

// HospitalRevenue returns the structured hospital share, falling back to the
// raw amount when the breakdown was never recorded.
func (b *Booking) HospitalRevenue() int64 {
	if b.Revenue.HospitalAmount != nil {
		return *b.Revenue.HospitalAmount
	}
	return b.Amount
}

// VisitSummary is the clinical record attached to a doctor booking after a
// visit. Updates replace the whole object; there is no field-level merge.
type VisitSummary struct {
	History       string         `json:"history,omitempty"`
	Symptoms      []string       `json:"symptoms,omitempty"`
	Diagnosis     string         `json:"diagnosis,omitempty"`
	Examinations  []Examination  `json:"examinations,omitempty"`
	Prescriptions []Prescription `json:"prescriptions,omitempty"`
}

func (v VisitSummary) IsZero() bool {
	return v.History == "" && v.Diagnosis == "" && len(v.Symptoms) == 0 &&
		len(v.Examinations) == 0 && len(v.Prescriptions) == 0
}

func (v VisitSummary) Value() (driver.Value, error) {
	if v.IsZero() {
		return nil, nil
	}
	return jsonbValue(v)
}

func (v *VisitSummary) Scan(src interface{}) error {
	return jsonbScan(src, v)
}

type Examination struct {
	Name   string     `json:"name"`
	Result string     `json:"result,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

type RefillStatus string

const (
	RefillStatusNone      RefillStatus = ""
	RefillStatusRequested RefillStatus = "requested"
	RefillStatusApproved  RefillStatus = "approved"
	RefillStatusDenied    RefillStatus = "denied"
)

type ReminderSettings struct {
	Enabled bool     `json:"enabled"`
	Times   []string `json:"times,omitempty"`
}

type Prescription struct {
	ID           uuid.UUID         `json:"id"`
	Medication   string            `json:"medication"`
	Dosage       string            `json:"dosage,omitempty"`
	Frequency    string            `json:"frequency,omitempty"`
	Type         string            `json:"type,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	StartDate    *time.Time        `json:"start_date,omitempty"`
	EndDate      *time.Time        `json:"end_date,omitempty"`
	RefillStatus RefillStatus      `json:"refill_status,omitempty"`
	Reminder     *ReminderSettings `json:"reminder,omitempty"`
}

// Active reports whether the course is still running at the given instant.
// Prescriptions without an end date are treated as ongoing.
func (p Prescription) Active(now time.Time) bool {
	return p.EndDate == nil || p.EndDate.After(now)
}

// LabReport is the processed result attached to a test booking.
type LabReport struct {
	URL        string     `json:"url,omitempty"`
	Status     string     `json:"status,omitempty"`
	ResultDate *time.Time `json:"result_date,omitempty"`
}

func (r LabReport) IsZero() bool {
	return r.URL == "" && r.Status == "" && r.ResultDate == nil
}

func (r LabReport) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return jsonbValue(r)
}

func (r *LabReport) Scan(src interface{}) error {
	return jsonbScan(src, r)
}

// Slot is one candidate appointment time in a doctor's day.
type Slot struct {
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID   *uuid.UUID
	DoctorID *uuid.UUID
	LabID    *uuid.UUID
	Type     BookingType
	Status   BookingStatus
	From     *time.Time
	To       *time.Time
	Pagination
}

type CreateBookingRequest struct {
	Type     BookingType      `json:"booking_type,omitempty"`
	Date     *time.Time       `json:"date" binding:"required"`
	Time     *string          `json:"time,omitempty"`
	TestID   *uuid.UUID       `json:"test_id,omitempty"`
	LabID    *uuid.UUID       `json:"lab_id,omitempty"`
	DoctorID *uuid.UUID       `json:"doctor_id,omitempty"`
	Mode     *AppointmentMode `json:"appointment_mode,omitempty"`
	Amount   int64            `json:"amount,omitempty"`
}

// OfflineBookingRequest is a walk-in test booking recorded by lab staff.
type OfflineBookingRequest struct {
	Phone  string     `json:"phone" binding:"required"`
	Name   string     `json:"name,omitempty"`
	TestID *uuid.UUID `json:"test_id" binding:"required"`
	Date   *time.Time `json:"date" binding:"required"`
	Amount int64      `json:"amount,omitempty"`
}

type UpdateStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
	Reason string        `json:"reason,omitempty"`
}

// VisitRecord is the patient-facing visit summary listing entry.
type VisitRecord struct {
	BookingID      uuid.UUID    `json:"booking_id"`
	Date           time.Time    `json:"date"`
	DoctorID       *uuid.UUID   `json:"doctor_id,omitempty"`
	DoctorName     string       `json:"doctor_name,omitempty"`
	Specialization string       `json:"specialization,omitempty"`
	Summary        VisitSummary `json:"summary"`
}

// DoctorFinance is one row of the hospital finance report.
type DoctorFinance struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Total      int64     `json:"total"`
	Bookings   int       `json:"bookings"`
}
