// Package notify delivers best-effort notifications to consultation
// participants. Failures here are logged and swallowed; they never fail
// or roll back the lifecycle mutation that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/wolfman30/telecare-platform/internal/events"
	"github.com/wolfman30/telecare-platform/internal/observability/metrics"
	"github.com/wolfman30/telecare-platform/internal/practitioners"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// PushSender delivers an in-app or push notification to a user. The
// transport behind it is out of scope.
type PushSender interface {
	Notify(ctx context.Context, userID, eventKind string, payload any) error
}

// ProfileSource looks up practitioner contact details.
type ProfileSource interface {
	Get(ctx context.Context, practitionerID string) (*practitioners.Profile, error)
}

// Service fans events out to push and email channels.
type Service struct {
	push     PushSender
	email    EmailSender
	profiles ProfileSource
	metrics  *metrics.AppointmentMetrics
	logger   *logging.Logger
}

// NewService creates a notification service. Any sender may be nil; that
// channel is simply skipped.
func NewService(push PushSender, email EmailSender, profiles ProfileSource, m *metrics.AppointmentMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{push: push, email: email, profiles: profiles, metrics: m, logger: logger}
}

// PatientWaiting tells the practitioner a patient entered the waiting
// room. Never returns an error to the caller.
func (s *Service) PatientWaiting(ctx context.Context, evt events.PatientWaitingV1) {
	s.send(ctx, evt.PractitionerID, "patient_waiting", evt,
		"Patient waiting",
		fmt.Sprintf("A patient is in the waiting room for the %s consultation.", evt.ScheduledAt.Format("15:04")))
}

// AppointmentBooked tells the practitioner about a new booking.
func (s *Service) AppointmentBooked(ctx context.Context, evt events.AppointmentBookedV1) {
	s.send(ctx, evt.PractitionerID, "appointment_booked", evt,
		"New appointment",
		fmt.Sprintf("A %s consultation was booked for %s.", evt.Channel, evt.ScheduledAt.Format("Monday, January 2 at 15:04")))
}

// AppointmentCancelled informs the practitioner of a cancellation.
func (s *Service) AppointmentCancelled(ctx context.Context, evt events.AppointmentCancelledV1) {
	s.send(ctx, evt.PractitionerID, "appointment_cancelled", evt,
		"Appointment cancelled",
		fmt.Sprintf("The consultation scheduled for %s was cancelled.", evt.ScheduledAt.Format("Monday, January 2 at 15:04")))
}

// AppointmentReminder nudges the patient ahead of the scheduled time.
func (s *Service) AppointmentReminder(ctx context.Context, evt events.AppointmentReminderV1) {
	s.send(ctx, evt.PatientID, "appointment_reminder", evt,
		"Upcoming consultation",
		fmt.Sprintf("Your %s consultation starts at %s.", evt.Channel, evt.ScheduledAt.Format("15:04")))
}

func (s *Service) send(ctx context.Context, userID, eventKind string, payload any, subject, body string) {
	if s.push != nil {
		if err := s.push.Notify(ctx, userID, eventKind, payload); err != nil {
			s.metrics.ObserveNotifyFailure()
			s.logger.Error("push notification failed", "error", err, "user_id", userID, "event", eventKind)
		}
	}
	if s.email == nil || s.profiles == nil {
		return
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil || profile == nil || profile.Email == "" {
		if err != nil {
			s.logger.Warn("notification profile lookup failed", "error", err, "user_id", userID)
		}
		return
	}
	msg := EmailMessage{
		To:      profile.Email,
		ToName:  profile.DisplayName,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.metrics.ObserveNotifyFailure()
		s.logger.Error("notification email failed", "error", err, "user_id", userID, "event", eventKind)
	}
}

// StubPushSender logs pushes without delivering them.
type StubPushSender struct {
	logger *logging.Logger
}

// NewStubPushSender creates a stub push sender.
func NewStubPushSender(logger *logging.Logger) *StubPushSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubPushSender{logger: logger}
}

// Notify logs but doesn't send.
func (s *StubPushSender) Notify(ctx context.Context, userID, eventKind string, payload any) error {
	s.logger.Info("stub push sender: would notify", "user_id", userID, "event", eventKind)
	return nil
}

var _ PushSender = (*StubPushSender)(nil)
