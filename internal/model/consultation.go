package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// Consultation is the structured record of one doctor visit, one-to-one
// with its booking. Created lazily on the first save and upserted after.
type Consultation struct {
	Base
	BookingID     uuid.UUID     `json:"booking_id" db:"booking_id"`
	DoctorID      uuid.UUID     `json:"doctor_id" db:"doctor_id"`
	PatientID     uuid.UUID     `json:"patient_id" db:"patient_id"`
	Vitals        Vitals        `json:"vitals,omitempty" db:"vitals"`
	Diagnosis     string        `json:"diagnosis,omitempty" db:"diagnosis"`
	Notes         string        `json:"notes,omitempty" db:"notes"`
	OrderedTests  OrderedTests  `json:"ordered_tests,omitempty" db:"ordered_tests"`
	FollowUpDate  *time.Time    `json:"follow_up_date,omitempty" db:"follow_up_date"`
	Prescriptions Prescriptions `json:"prescriptions,omitempty" db:"prescriptions"`
}

type Vitals struct {
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     int     `json:"heart_rate,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	SpO2          int     `json:"spo2,omitempty"`
	WeightKG      float64 `json:"weight_kg,omitempty"`
}

func (v Vitals) IsZero() bool {
	return v == Vitals{}
}

func (v Vitals) Value() (driver.Value, error) {
	if v.IsZero() {
		return nil, nil
	}
	return jsonbValue(v)
}

func (v *Vitals) Scan(src interface{}) error {
	return jsonbScan(src, v)
}

type OrderedTests []string

func (t OrderedTests) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return jsonbValue(t)
}

func (t *OrderedTests) Scan(src interface{}) error {
	return jsonbScan(src, t)
}

type Prescriptions []Prescription

func (p Prescriptions) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return jsonbValue(p)
}

func (p *Prescriptions) Scan(src interface{}) error {
	return jsonbScan(src, p)
}
