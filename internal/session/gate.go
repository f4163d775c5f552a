// Package session gates the hand-off from waiting room to live session.
// The video/chat client consults the gate immediately before requesting
// a channel from its provider; this subsystem never creates the physical
// session itself.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/observability/metrics"
)

// CanEstablish reports whether a live session may be established for the
// snapshot: true iff the appointment is exactly InProgress. Callers must
// re-evaluate on every state change, never cache — completion revokes
// permission immediately.
func CanEstablish(a *appointments.Appointment) bool {
	return a != nil && a.Status == appointments.StatusInProgress
}

// Getter reads the current appointment record.
type Getter interface {
	Get(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error)
}

// Gate answers hand-off permission against the live record.
type Gate struct {
	store   Getter
	metrics *metrics.AppointmentMetrics
}

// NewGate builds a hand-off gate over the appointment store.
func NewGate(store Getter, m *metrics.AppointmentMetrics) *Gate {
	if store == nil {
		panic("session: store required")
	}
	return &Gate{store: store, metrics: m}
}

// CanEstablishSession re-reads the record and evaluates the gate.
func (g *Gate) CanEstablishSession(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := g.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	allowed := CanEstablish(a)
	g.metrics.ObserveHandoffCheck(allowed)
	return allowed, nil
}
