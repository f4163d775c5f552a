// Package events defines the versioned payloads exchanged between the
// booking subsystem and its best-effort notification side effects.
package events

import "time"

type AppointmentBookedV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	PractitionerID string    `json:"practitioner_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Channel        string    `json:"channel"`
	BookedAt       time.Time `json:"booked_at"`
}

type PatientWaitingV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	PractitionerID string    `json:"practitioner_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	JoinedAt       time.Time `json:"joined_at"`
}

type AppointmentCancelledV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	PractitionerID string    `json:"practitioner_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	CancelledBy    string    `json:"cancelled_by,omitempty"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

type AppointmentReminderV1 struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Channel       string    `json:"channel"`
	RemindAt      time.Time `json:"remind_at"`
}
