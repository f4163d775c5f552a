package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telecare-platform/internal/appointments"
)

type mutableGetter struct {
	mu   sync.Mutex
	appt appointments.Appointment
}

func (g *mutableGetter) Get(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := g.appt
	return &cp, nil
}

func (g *mutableGetter) setStatus(s appointments.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.appt.Status = s
}

func TestAwaitReturnsImmediatelyWhenInProgress(t *testing.T) {
	getter := &mutableGetter{appt: appointments.Appointment{Status: appointments.StatusInProgress}}
	awaiter := NewAwaiter(NewGate(getter, nil), 10*time.Millisecond, time.Second, nil)

	start := time.Now()
	err := awaiter.Await(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAwaitOpensWhenSessionStarts(t *testing.T) {
	getter := &mutableGetter{appt: appointments.Appointment{Status: appointments.StatusScheduled}}
	awaiter := NewAwaiter(NewGate(getter, nil), 5*time.Millisecond, time.Second, nil)

	go func() {
		time.Sleep(30 * time.Millisecond)
		getter.setStatus(appointments.StatusInProgress)
	}()

	err := awaiter.Await(context.Background(), uuid.New())
	assert.NoError(t, err)
}

func TestAwaitTimesOut(t *testing.T) {
	getter := &mutableGetter{appt: appointments.Appointment{Status: appointments.StatusScheduled}}
	awaiter := NewAwaiter(NewGate(getter, nil), 5*time.Millisecond, 50*time.Millisecond, nil)

	err := awaiter.Await(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrHandoffTimeout)
}

func TestAwaitPropagatesCancellation(t *testing.T) {
	getter := &mutableGetter{appt: appointments.Appointment{Status: appointments.StatusScheduled}}
	awaiter := NewAwaiter(NewGate(getter, nil), 5*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := awaiter.Await(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAwaiterDefaults(t *testing.T) {
	awaiter := NewAwaiter(NewGate(&mutableGetter{}, nil), 0, 0, nil)
	assert.Equal(t, DefaultPollInterval, awaiter.interval)
	assert.Equal(t, DefaultPollTimeout, awaiter.timeout)
}
