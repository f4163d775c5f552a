// Package stream is the change-feed layer: every committed appointment
// mutation is pushed as a full snapshot so observers re-evaluate derived
// state instead of caching it. Delivery is push-based and best-effort on
// top of the store's consistency; a subscriber that needs a guaranteed
// current view must still read the store.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// Feed publishes and subscribes appointment snapshots over Redis pub/sub.
type Feed struct {
	redis  *redis.Client
	logger *logging.Logger
	tracer trace.Tracer
}

// NewFeed creates a change feed over the given Redis client.
func NewFeed(redisClient *redis.Client, logger *logging.Logger) *Feed {
	if redisClient == nil {
		panic("stream: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Feed{
		redis:  redisClient,
		logger: logger,
		tracer: otel.Tracer("telecare.internal.stream"),
	}
}

var _ appointments.ChangePublisher = (*Feed)(nil)

func appointmentChannel(id uuid.UUID) string {
	return "appointments:changes:" + id.String()
}

func practitionerChannel(practitionerID string) string {
	return "appointments:practitioner:" + practitionerID
}

// AppointmentChanged publishes the snapshot on the appointment's own
// channel and on the practitioner's channel.
func (f *Feed) AppointmentChanged(ctx context.Context, a *appointments.Appointment) error {
	ctx, span := f.tracer.Start(ctx, "stream.appointment_changed")
	defer span.End()

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("stream: encode snapshot: %w", err)
	}
	if err := f.redis.Publish(ctx, appointmentChannel(a.ID), payload).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("stream: publish appointment change: %w", err)
	}
	if err := f.redis.Publish(ctx, practitionerChannel(a.PractitionerID), payload).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("stream: publish practitioner change: %w", err)
	}
	return nil
}

// Subscribe delivers snapshots for a single appointment until the
// returned stop function is called or the context ends.
func (f *Feed) Subscribe(ctx context.Context, id uuid.UUID) (<-chan appointments.Appointment, func()) {
	return f.subscribe(ctx, appointmentChannel(id))
}

// SubscribePractitioner delivers snapshots for every appointment of a
// practitioner, feeding waiting-room dashboards.
func (f *Feed) SubscribePractitioner(ctx context.Context, practitionerID string) (<-chan appointments.Appointment, func()) {
	return f.subscribe(ctx, practitionerChannel(practitionerID))
}

func (f *Feed) subscribe(ctx context.Context, channel string) (<-chan appointments.Appointment, func()) {
	sub := f.redis.Subscribe(ctx, channel)
	out := make(chan appointments.Appointment, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var a appointments.Appointment
			if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
				f.logger.Warn("stream: dropping undecodable snapshot", "channel", channel, "error", err)
				continue
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop
}
