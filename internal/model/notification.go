package model

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationRefillRequested NotificationType = "refill_requested"
	NotificationApproval        NotificationType = "approval_decision"
	NotificationBooking         NotificationType = "booking_update"
)

// Notification is stored for in-app display and mirrored onto the broker.
type Notification struct {
	Base
	AccountID uuid.UUID        `json:"account_id" db:"account_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body,omitempty" db:"body"`
	Read      bool             `json:"read" db:"read"`
}
