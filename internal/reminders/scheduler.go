package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// DefaultLeadTime is how far ahead of the consultation the reminder
// fires.
const DefaultLeadTime = time.Hour

// Scheduler creates reminders for freshly booked appointments.
type Scheduler struct {
	store  *Store
	lead   time.Duration
	logger *logging.Logger
}

// NewScheduler creates a reminder scheduler. A zero lead time falls back
// to the default.
func NewScheduler(store *Store, lead time.Duration, logger *logging.Logger) *Scheduler {
	if store == nil {
		panic("reminders: store required")
	}
	if lead <= 0 {
		lead = DefaultLeadTime
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{store: store, lead: lead, logger: logger}
}

// Schedule creates a pending reminder for the appointment. Returns nil
// without creating anything when the reminder moment already passed.
func (s *Scheduler) Schedule(ctx context.Context, a *appointments.Appointment) (*Reminder, error) {
	remindAt := a.ScheduledAt.Add(-s.lead)
	if remindAt.Before(time.Now().UTC()) {
		s.logger.Info("reminders: booking too close, skipping reminder", "appointment_id", a.ID)
		return nil, nil
	}
	r := &Reminder{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		ScheduledAt:   a.ScheduledAt,
		Channel:       string(a.Channel),
		RemindAt:      remindAt,
		Status:        StatusPending,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("reminders: schedule: %w", err)
	}
	s.logger.Info("reminder scheduled", "appointment_id", a.ID, "remind_at", remindAt)
	return r, nil
}

// Dismiss removes the pending reminder for a cancelled booking.
func (s *Scheduler) Dismiss(ctx context.Context, a *appointments.Appointment) error {
	return s.store.DismissForAppointment(ctx, a.ID)
}
