package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/telecare-platform/internal/observability/metrics"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

var lifecycleTracer = otel.Tracer("telecare.internal.appointments")

// DefaultConflictWindow is the minimum separation between two active
// bookings for the same practitioner. A difference of exactly the window
// is still free; only strictly smaller gaps conflict.
const DefaultConflictWindow = 30 * time.Minute

// ChangePublisher pushes appointment snapshots to subscribed observers.
// Delivery is best-effort push on top of the store's own consistency;
// clients must re-evaluate derived state on every snapshot.
type ChangePublisher interface {
	AppointmentChanged(ctx context.Context, a *Appointment) error
}

// Service drives the appointment state machine. It exposes the only
// sanctioned mutations; nothing else writes appointment records.
type Service struct {
	store   Store
	feed    ChangePublisher
	metrics *metrics.AppointmentMetrics
	logger  *logging.Logger
	window  time.Duration
	now     func() time.Time
}

// NewService constructs the lifecycle manager.
func NewService(store Store, feed ChangePublisher, m *metrics.AppointmentMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:   store,
		feed:    feed,
		metrics: m,
		logger:  logger,
		window:  DefaultConflictWindow,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// BookRequest carries the booking input. ID may be client-assigned; a
// zero ID gets a fresh one.
type BookRequest struct {
	ID             uuid.UUID
	PatientID      string
	PractitionerID string
	ScheduledAt    time.Time
	Channel        Channel
	Notes          string
	Intake         *Intake
}

// Book validates the request and creates the appointment as Scheduled.
// Slot exclusivity is enforced by the store under a per-practitioner
// lock, so two racing bookings cannot both commit.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	ctx, span := lifecycleTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("telecare.practitioner_id", req.PractitionerID),
		attribute.String("telecare.patient_id", req.PatientID),
	)

	now := s.now()
	if req.PatientID == "" {
		return nil, &ValidationError{Field: "patient_id", Reason: "required"}
	}
	if req.PractitionerID == "" {
		return nil, &ValidationError{Field: "practitioner_id", Reason: "required"}
	}
	if req.ScheduledAt.IsZero() {
		return nil, &ValidationError{Field: "scheduled_at", Reason: "required"}
	}
	if req.ScheduledAt.Before(now) {
		return nil, &ValidationError{Field: "scheduled_at", Reason: "must not be in the past"}
	}
	switch req.Channel {
	case ChannelVideo, ChannelChat:
	case "":
		req.Channel = ChannelVideo
	default:
		return nil, &ValidationError{Field: "channel", Reason: "must be video or chat"}
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	a := &Appointment{
		ID:             req.ID,
		PatientID:      req.PatientID,
		PractitionerID: req.PractitionerID,
		ScheduledAt:    req.ScheduledAt.UTC(),
		Channel:        req.Channel,
		Status:         StatusScheduled,
		Notes:          req.Notes,
		Intake:         req.Intake,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateExclusive(ctx, a, s.window); err != nil {
		span.RecordError(err)
		if _, ok := err.(*UnavailableError); ok {
			s.metrics.ObserveConflict()
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}

	s.metrics.ObserveBooking("ok")
	s.logger.Info("appointment booked",
		"appointment_id", a.ID,
		"practitioner_id", a.PractitionerID,
		"patient_id", a.PatientID,
		"scheduled_at", a.ScheduledAt,
		"channel", a.Channel,
	)
	s.publish(ctx, a)
	return a, nil
}

// Start transitions Scheduled → InProgress. Only the assigned
// practitioner may start the session.
func (s *Service) Start(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	ctx, span := lifecycleTracer.Start(ctx, "appointments.start")
	defer span.End()

	if err := s.requirePractitioner(ctx, id, actor, "start"); err != nil {
		return nil, err
	}
	a, err := s.store.UpdateStatus(ctx, id, []Status{StatusScheduled}, StatusInProgress, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveTransition(string(StatusInProgress))
	s.logger.Info("appointment started", "appointment_id", id, "practitioner_id", a.PractitionerID)
	s.publish(ctx, a)
	return a, nil
}

// Complete finalizes the appointment. Permitted from Scheduled or
// InProgress, practitioner only.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	ctx, span := lifecycleTracer.Start(ctx, "appointments.complete")
	defer span.End()

	if err := s.requirePractitioner(ctx, id, actor, "complete"); err != nil {
		return nil, err
	}
	a, err := s.store.UpdateStatus(ctx, id, []Status{StatusScheduled, StatusInProgress}, StatusCompleted, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveTransition(string(StatusCompleted))
	s.logger.Info("appointment completed", "appointment_id", id)
	s.publish(ctx, a)
	return a, nil
}

// Cancel marks the appointment cancelled. Either participant may cancel
// while the appointment is still active.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	ctx, span := lifecycleTracer.Start(ctx, "appointments.cancel")
	defer span.End()

	if actor.UserID != "" {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if actor.UserID != current.PatientID && actor.UserID != current.PractitionerID {
			return nil, &PermissionError{Op: "cancel", UserID: actor.UserID}
		}
	}
	a, err := s.store.UpdateStatus(ctx, id, []Status{StatusScheduled, StatusInProgress}, StatusCancelled, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveTransition(string(StatusCancelled))
	s.logger.Info("appointment cancelled", "appointment_id", id, "by", actor.UserID)
	s.publish(ctx, a)
	return a, nil
}

// Get returns a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.Get(ctx, id)
}

// List returns appointments matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]Appointment, error) {
	return s.store.List(ctx, f)
}

func (s *Service) requirePractitioner(ctx context.Context, id uuid.UUID, actor Actor, op string) error {
	if actor.UserID == "" {
		return nil
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != RolePractitioner || actor.UserID != current.PractitionerID {
		return &PermissionError{Op: op, UserID: actor.UserID}
	}
	return nil
}

// publish pushes the snapshot to observers. Failures are logged and
// swallowed; the mutation already committed.
func (s *Service) publish(ctx context.Context, a *Appointment) {
	if s.feed == nil {
		return
	}
	if err := s.feed.AppointmentChanged(ctx, a); err != nil {
		s.logger.Warn("appointment change publish failed", "appointment_id", a.ID, "error", err)
	}
}

// SetNow overrides the clock, for tests.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// SetWindow overrides the booking conflict window. Zero or negative
// values are ignored.
func (s *Service) SetWindow(w time.Duration) {
	if w > 0 {
		s.window = w
	}
}
