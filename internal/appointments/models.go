// Package appointments owns the consultation booking lifecycle: the
// appointment record, its status machine, and the sanctioned mutations.
package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of an appointment.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active reports whether the appointment still occupies the practitioner's
// calendar for conflict purposes.
func (s Status) Active() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// ActiveStatuses is the status set used for conflict queries.
var ActiveStatuses = []Status{StatusScheduled, StatusInProgress}

// Channel specifies how the consultation is delivered.
type Channel string

const (
	ChannelVideo Channel = "video"
	ChannelChat  Channel = "chat"
)

// Intake holds structured symptom information captured at booking time.
// The specialization suggestion comes from an external analyzer and is
// stored verbatim.
type Intake struct {
	Symptoms        string   `json:"symptoms"`
	Severity        string   `json:"severity,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// Appointment is the shared record both participants act on. It is never
// physically deleted; cancellation is a status.
type Appointment struct {
	ID                  uuid.UUID  `json:"id"`
	PatientID           string     `json:"patient_id"`
	PractitionerID      string     `json:"practitioner_id"`
	ScheduledAt         time.Time  `json:"scheduled_at"`
	Channel             Channel    `json:"channel"`
	Status              Status     `json:"status"`
	Notes               string     `json:"notes,omitempty"`
	Intake              *Intake    `json:"intake,omitempty"`
	PrescriptionID      string     `json:"prescription_id,omitempty"`
	PaymentSettled      bool       `json:"payment_settled"`
	WaitingRoomJoinedAt *time.Time `json:"waiting_room_joined_at,omitempty"`
	WaitingRoomLeftAt   *time.Time `json:"waiting_room_left_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Waiting reports whether the patient is currently in the waiting room.
func (a *Appointment) Waiting() bool {
	return a.WaitingRoomJoinedAt != nil && a.WaitingRoomLeftAt == nil
}

// Role identifies which side of the consultation an actor is on.
type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
)

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID string
	Role   Role
}
