package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telecare-platform/internal/appointments"
)

type stubGetter struct {
	appt *appointments.Appointment
	err  error
}

func (s *stubGetter) Get(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

func TestCanEstablish(t *testing.T) {
	tests := []struct {
		status appointments.Status
		want   bool
	}{
		{appointments.StatusScheduled, false},
		{appointments.StatusInProgress, true},
		{appointments.StatusCompleted, false},
		{appointments.StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := &appointments.Appointment{Status: tt.status}
			assert.Equal(t, tt.want, CanEstablish(a))
		})
	}
	assert.False(t, CanEstablish(nil))
}

func TestGateReadsLiveRecord(t *testing.T) {
	a := &appointments.Appointment{ID: uuid.New(), Status: appointments.StatusScheduled}
	getter := &stubGetter{appt: a}
	gate := NewGate(getter, nil)
	ctx := context.Background()

	allowed, err := gate.CanEstablishSession(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, allowed)

	a.Status = appointments.StatusInProgress
	allowed, err = gate.CanEstablishSession(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Completion revokes permission immediately.
	a.Status = appointments.StatusCompleted
	allowed, err = gate.CanEstablishSession(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestGateUnknownAppointment(t *testing.T) {
	gate := NewGate(&stubGetter{err: appointments.ErrNotFound}, nil)
	_, err := gate.CanEstablishSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, appointments.ErrNotFound)
}
