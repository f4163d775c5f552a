// Package reminders schedules and delivers upcoming-appointment nudges.
package reminders

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a reminder.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDismissed Status = "dismissed"
)

// Reminder is a scheduled pre-appointment notification.
type Reminder struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	PatientID     string     `json:"patient_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Channel       string     `json:"channel"`
	RemindAt      time.Time  `json:"remind_at"`
	Status        Status     `json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	DismissedAt   *time.Time `json:"dismissed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
