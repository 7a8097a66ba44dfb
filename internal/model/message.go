package model

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

type ParticipantKind string

const (
	ParticipantPatient ParticipantKind = "patient"
	ParticipantDoctor  ParticipantKind = "doctor"
)

// ParticipantRef is a tagged reference to a chat participant.
type ParticipantRef struct {
	Kind ParticipantKind `json:"kind"`
	ID   uuid.UUID       `json:"id"`
}

func (r ParticipantRef) Value() (driver.Value, error) {
	return jsonbValue(r)
}

func (r *ParticipantRef) Scan(src interface{}) error {
	return jsonbScan(src, r)
}

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Message is one chat entry scoped to a booking.
type Message struct {
	Base
	BookingID uuid.UUID      `json:"booking_id" db:"booking_id"`
	Sender    ParticipantRef `json:"sender" db:"sender"`
	Receiver  ParticipantRef `json:"receiver" db:"receiver"`
	Type      MessageType    `json:"type" db:"type"`
	Content   string         `json:"content" db:"content"`
	Read      bool           `json:"read" db:"read"`
}
