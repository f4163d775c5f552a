// Package waitingroom tracks patient presence in the pre-session holding
// area and signals the practitioner side when someone is waiting.
package waitingroom

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/events"
	"github.com/wolfman30/telecare-platform/internal/observability/metrics"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

var waitingTracer = otel.Tracer("telecare.internal.waitingroom")

// Notifier signals practitioner-side presence. Implementations must be
// safe to call concurrently and must not block on delivery guarantees.
type Notifier interface {
	PatientWaiting(ctx context.Context, evt events.PatientWaitingV1)
}

// Coordinator records waiting-room presence. Presence is meaningful
// while the appointment is Scheduled but never rejected on status: a
// patient may leave at any time, whatever the record has moved to.
type Coordinator struct {
	store    appointments.Store
	feed     appointments.ChangePublisher
	notifier Notifier
	metrics  *metrics.AppointmentMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewCoordinator constructs a waiting-room coordinator.
func NewCoordinator(store appointments.Store, feed appointments.ChangePublisher, notifier Notifier, m *metrics.AppointmentMetrics, logger *logging.Logger) *Coordinator {
	if store == nil {
		panic("waitingroom: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		store:    store,
		feed:     feed,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Join marks the patient present. Joining twice without leaving keeps
// the original timestamp; joining after a leave starts a fresh wait. The
// practitioner notification is fire-and-forget and never blocks or fails
// the state update.
func (c *Coordinator) Join(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error) {
	ctx, span := waitingTracer.Start(ctx, "waitingroom.join")
	defer span.End()
	span.SetAttributes(attribute.String("telecare.appointment_id", id.String()))

	before, err := c.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	alreadyWaiting := before.Waiting()

	a, err := c.store.JoinWaitingRoom(ctx, id, c.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if !alreadyWaiting {
		c.metrics.WaitingJoined()
		c.logger.Info("patient joined waiting room", "appointment_id", id, "practitioner_id", a.PractitionerID)
		c.publish(ctx, a)
		if c.notifier != nil && a.WaitingRoomJoinedAt != nil {
			evt := events.PatientWaitingV1{
				EventID:        uuid.NewString(),
				AppointmentID:  a.ID.String(),
				PatientID:      a.PatientID,
				PractitionerID: a.PractitionerID,
				ScheduledAt:    a.ScheduledAt,
				JoinedAt:       *a.WaitingRoomJoinedAt,
			}
			go c.notifier.PatientWaiting(context.WithoutCancel(ctx), evt)
		}
	}
	return a, nil
}

// Leave stamps the departure. Always succeeds for an existing record,
// even if the appointment has meanwhile started, completed or been
// cancelled.
func (c *Coordinator) Leave(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error) {
	ctx, span := waitingTracer.Start(ctx, "waitingroom.leave")
	defer span.End()

	before, err := c.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	a, err := c.store.LeaveWaitingRoom(ctx, id, c.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if before.Waiting() {
		c.metrics.WaitingLeft()
	}
	c.logger.Info("patient left waiting room", "appointment_id", id)
	c.publish(ctx, a)
	return a, nil
}

// ListWaiting returns the practitioner's queue, earliest-waiting first.
func (c *Coordinator) ListWaiting(ctx context.Context, practitionerID string) ([]appointments.Appointment, error) {
	all, err := c.store.List(ctx, appointments.Filter{
		PractitionerID: practitionerID,
		OrderBy:        appointments.OrderByJoinedAt,
	})
	if err != nil {
		return nil, err
	}
	waiting := make([]appointments.Appointment, 0, len(all))
	for i := range all {
		if all[i].Waiting() {
			waiting = append(waiting, all[i])
		}
	}
	return waiting, nil
}

func (c *Coordinator) publish(ctx context.Context, a *appointments.Appointment) {
	if c.feed == nil {
		return
	}
	if err := c.feed.AppointmentChanged(ctx, a); err != nil {
		c.logger.Warn("waiting room change publish failed", "appointment_id", a.ID, "error", err)
	}
}

// SetNow overrides the clock, for tests.
func (c *Coordinator) SetNow(now func() time.Time) { c.now = now }
