package model

import (
	"time"

	"github.com/google/uuid"
)

// HealthMetric is one self-reported measurement (blood pressure, weight,
// glucose and so on).
type HealthMetric struct {
	Base
	AccountID  uuid.UUID `json:"account_id" db:"account_id"`
	Type       string    `json:"type" db:"type"`
	Value      float64   `json:"value" db:"value"`
	Unit       string    `json:"unit,omitempty" db:"unit"`
	Note       string    `json:"note,omitempty" db:"note"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}
