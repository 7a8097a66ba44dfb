package model

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

// Lab is a diagnostic facility. The catalog overrides the generic Test
// price/turnaround per facility.
type Lab struct {
	Base
	Name               string             `json:"name" db:"name"`
	RegistrationNumber string             `json:"registration_number" db:"registration_number"`
	Phone              string             `json:"phone" db:"phone"`
	Email              *string            `json:"email,omitempty" db:"email"`
	Address            *string            `json:"address,omitempty" db:"address"`
	City               *string            `json:"city,omitempty" db:"city"`
	Status             VerificationStatus `json:"status" db:"status"`
	Rating             float64            `json:"rating" db:"rating"`
	ReviewsCount       int                `json:"reviews_count" db:"reviews_count"`
	Catalog            CatalogEntries     `json:"catalog,omitempty" db:"catalog"`
	HomeCollection     bool               `json:"home_collection" db:"home_collection"`
}

type CatalogEntry struct {
	ID              uuid.UUID `json:"id"`
	TestID          uuid.UUID `json:"test_id"`
	Price           int64     `json:"price"`
	TurnaroundHours int       `json:"turnaround_hours,omitempty"`
	Available       bool      `json:"available"`
}

type CatalogEntries []CatalogEntry

func (c CatalogEntries) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	return jsonbValue(c)
}

func (c *CatalogEntries) Scan(src interface{}) error {
	return jsonbScan(src, c)
}

// Hospital is a facility with a doctor roster. Slot assignments on roster
// entries override the default appointment grid per calendar day.
type Hospital struct {
	Base
	Name               string             `json:"name" db:"name"`
	RegistrationNumber string             `json:"registration_number" db:"registration_number"`
	Phone              string             `json:"phone" db:"phone"`
	Email              *string            `json:"email,omitempty" db:"email"`
	Address            *string            `json:"address,omitempty" db:"address"`
	City               *string            `json:"city,omitempty" db:"city"`
	Status             VerificationStatus `json:"status" db:"status"`
	Rating             float64            `json:"rating" db:"rating"`
	ReviewsCount       int                `json:"reviews_count" db:"reviews_count"`
	Roster             AssociatedDoctors  `json:"roster,omitempty" db:"roster"`
}

// AssociatedDoctor is one roster entry. Slots maps a date (YYYY-MM-DD) to
// the hospital-assigned times for that day.
type AssociatedDoctor struct {
	DoctorID   uuid.UUID           `json:"doctor_id"`
	Name       string              `json:"name"`
	Department string              `json:"department,omitempty"`
	Active     bool                `json:"active"`
	Slots      map[string][]string `json:"slots,omitempty"`
}

type AssociatedDoctors []AssociatedDoctor

func (d AssociatedDoctors) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return jsonbValue(d)
}

func (d *AssociatedDoctors) Scan(src interface{}) error {
	return jsonbScan(src, d)
}

// Find returns the active roster entry for a doctor, if any.
func (d AssociatedDoctors) Find(doctorID uuid.UUID) (AssociatedDoctor, bool) {
	for _, entry := range d {
		if entry.DoctorID == doctorID {
			return entry, true
		}
	}
	return AssociatedDoctor{}, false
}

// LabFilter narrows the public lab directory.
type LabFilter struct {
	City   string `form:"city"`
	Search string `form:"search"`
	Pagination
}
