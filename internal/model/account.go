package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RoleLab      Role = "lab"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

// Restricted reports whether accounts with this role need admin approval
// before they can log in.
func (r Role) Restricted() bool {
	return r == RoleDoctor || r == RoleLab || r == RoleHospital
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleLab, RoleHospital, RoleAdmin:
		return true
	}
	return false
}

type EntityKind string

const (
	EntityKindLab      EntityKind = "lab"
	EntityKindHospital EntityKind = "hospital"
)

// Account is the identity record for every platform participant. Phone is
// the primary natural key; role-specific payloads live in doctor_profile
// and the entity_kind/entity_id link.
type Account struct {
	Base
	Name            string        `json:"name" db:"name"`
	Phone           string        `json:"phone" db:"phone"`
	Email           *string       `json:"email,omitempty" db:"email"`
	PasswordHash    *string       `json:"-" db:"password_hash"`
	Role            Role          `json:"role" db:"role"`
	Approved        bool          `json:"approved" db:"approved"`
	Active          bool          `json:"active" db:"active"`
	OTPCode         *string       `json:"-" db:"otp_code"`
	OTPExpiresAt    *time.Time    `json:"-" db:"otp_expires_at"`
	EntityKind      *EntityKind   `json:"entity_kind,omitempty" db:"entity_kind"`
	EntityID        *uuid.UUID    `json:"entity_id,omitempty" db:"entity_id"`
	DoctorProfile   DoctorProfile `json:"doctor_profile,omitempty" db:"doctor_profile"`
	HealthProfile   HealthProfile `json:"health_profile,omitempty" db:"health_profile"`
	Favorites       FavoriteIDs   `json:"favorites,omitempty" db:"favorites"`
	ProfileImageURL *string       `json:"profile_image_url,omitempty" db:"profile_image_url"`
	City            *string       `json:"city,omitempty" db:"city"`
}

// EntityRef returns the linked facility reference for lab/hospital accounts.
func (a *Account) EntityRef() (EntityKind, uuid.UUID, bool) {
	if a.EntityKind == nil || a.EntityID == nil {
		return "", uuid.Nil, false
	}
	return *a.EntityKind, *a.EntityID, true
}

// DoctorProfile is the doctor-role payload embedded on the account.
type DoctorProfile struct {
	Specialization     string             `json:"specialization,omitempty"`
	Qualification      string             `json:"qualification,omitempty"`
	ExperienceYears    int                `json:"experience_years,omitempty"`
	Fee                int64              `json:"fee,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	Affiliations       []Affiliation      `json:"affiliations,omitempty"`
	Availability       []AvailabilityDay  `json:"availability,omitempty"`
	Rating             float64            `json:"rating,omitempty"`
	ReviewsCount       int                `json:"reviews_count,omitempty"`
}

func (p DoctorProfile) IsZero() bool {
	return p.Specialization == "" && p.VerificationStatus == "" &&
		len(p.Affiliations) == 0 && len(p.Availability) == 0
}

func (p DoctorProfile) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return jsonbValue(p)
}

func (p *DoctorProfile) Scan(src interface{}) error {
	return jsonbScan(src, p)
}

type Affiliation struct {
	HospitalID   uuid.UUID `json:"hospital_id"`
	HospitalName string    `json:"hospital_name"`
	Department   string    `json:"department,omitempty"`
}

// AvailabilityDay is the weekly availability template for a doctor.
type AvailabilityDay struct {
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

// HealthProfile carries the patient-maintained medical background.
type HealthProfile struct {
	BloodGroup       string            `json:"blood_group,omitempty"`
	HeightCM         float64           `json:"height_cm,omitempty"`
	WeightKG         float64           `json:"weight_kg,omitempty"`
	Allergies        []string          `json:"allergies,omitempty"`
	ChronicIllnesses []string          `json:"chronic_illnesses,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	Lifestyle        *Lifestyle        `json:"lifestyle,omitempty"`
	Insurance        *Insurance        `json:"insurance,omitempty"`
}

func (p HealthProfile) IsZero() bool {
	return p.BloodGroup == "" && p.HeightCM == 0 && p.WeightKG == 0 &&
		len(p.Allergies) == 0 && len(p.ChronicIllnesses) == 0 &&
		p.EmergencyContact == nil && p.Lifestyle == nil && p.Insurance == nil
}

func (p HealthProfile) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return jsonbValue(p)
}

func (p *HealthProfile) Scan(src interface{}) error {
	return jsonbScan(src, p)
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

type Lifestyle struct {
	Smoking  bool   `json:"smoking"`
	Alcohol  bool   `json:"alcohol"`
	Exercise string `json:"exercise,omitempty"`
	Diet     string `json:"diet,omitempty"`
}

type Insurance struct {
	Provider     string     `json:"provider"`
	PolicyNumber string     `json:"policy_number"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// FavoriteIDs is the patient's saved doctor list.
type FavoriteIDs []uuid.UUID

func (f FavoriteIDs) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return jsonbValue(f)
}

func (f *FavoriteIDs) Scan(src interface{}) error {
	return jsonbScan(src, f)
}

func (f FavoriteIDs) Contains(id uuid.UUID) bool {
	for _, v := range f {
		if v == id {
			return true
		}
	}
	return false
}

// AccountFilter narrows admin user listings.
type AccountFilter struct {
	Role   Role   `form:"role"`
	Search string `form:"search"`
	Pagination
}
