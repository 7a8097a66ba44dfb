package model

import (
	"github.com/google/uuid"
)

type ReviewTarget string

const (
	ReviewTargetDoctor   ReviewTarget = "doctor"
	ReviewTargetLab      ReviewTarget = "lab"
	ReviewTargetHospital ReviewTarget = "hospital"
)

func (t ReviewTarget) Valid() bool {
	switch t {
	case ReviewTargetDoctor, ReviewTargetLab, ReviewTargetHospital:
		return true
	}
	return false
}

// Review rates exactly one of doctor/lab/hospital.
type Review struct {
	Base
	AuthorID   uuid.UUID    `json:"author_id" db:"author_id"`
	AuthorName string       `json:"author_name" db:"author_name"`
	TargetKind ReviewTarget `json:"target_kind" db:"target_kind"`
	TargetID   uuid.UUID    `json:"target_id" db:"target_id"`
	Rating     int          `json:"rating" db:"rating"`
	Comment    string       `json:"comment,omitempty" db:"comment"`
}
