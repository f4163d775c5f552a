package waitingroom

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/events"
)

type fakeStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*appointments.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uuid.UUID]*appointments.Appointment)}
}

func (s *fakeStore) add(a *appointments.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.items[a.ID] = &cp
}

func (s *fakeStore) Get(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, appointments.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) List(ctx context.Context, f appointments.Filter) ([]appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []appointments.Appointment
	for _, a := range s.items {
		if f.PractitionerID != "" && a.PractitionerID != f.PractitionerID {
			continue
		}
		out = append(out, *a)
	}
	if f.OrderBy == appointments.OrderByJoinedAt {
		sort.Slice(out, func(i, j int) bool {
			ji, jj := out[i].WaitingRoomJoinedAt, out[j].WaitingRoomJoinedAt
			switch {
			case ji == nil:
				return false
			case jj == nil:
				return true
			default:
				return ji.Before(*jj)
			}
		})
	}
	return out, nil
}

func (s *fakeStore) CreateExclusive(ctx context.Context, a *appointments.Appointment, window time.Duration) error {
	s.add(a)
	return nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, allowed []appointments.Status, to appointments.Status, at time.Time) (*appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, appointments.ErrNotFound
	}
	a.Status = to
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

func (s *fakeStore) JoinWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, appointments.ErrNotFound
	}
	if a.WaitingRoomJoinedAt == nil || a.WaitingRoomLeftAt != nil {
		stamp := at
		a.WaitingRoomJoinedAt = &stamp
	}
	a.WaitingRoomLeftAt = nil
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

func (s *fakeStore) LeaveWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*appointments.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, appointments.ErrNotFound
	}
	stamp := at
	a.WaitingRoomLeftAt = &stamp
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

var _ appointments.Store = (*fakeStore)(nil)

type recordingNotifier struct {
	events chan events.PatientWaitingV1
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan events.PatientWaitingV1, 8)}
}

func (n *recordingNotifier) PatientWaiting(ctx context.Context, evt events.PatientWaitingV1) {
	n.events <- evt
}

func (n *recordingNotifier) waitForEvent(t *testing.T) events.PatientWaitingV1 {
	t.Helper()
	select {
	case evt := <-n.events:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for practitioner notification")
		return events.PatientWaitingV1{}
	}
}

func scheduledAppointment(practitionerID string) *appointments.Appointment {
	return &appointments.Appointment{
		ID:             uuid.New(),
		PatientID:      "pat-1",
		PractitionerID: practitionerID,
		ScheduledAt:    time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC),
		Channel:        appointments.ChannelVideo,
		Status:         appointments.StatusScheduled,
	}
}

func TestJoinMarksWaitingAndNotifies(t *testing.T) {
	store := newFakeStore()
	notifier := newRecordingNotifier()
	coord := NewCoordinator(store, nil, notifier, nil, nil)

	a := scheduledAppointment("doc-1")
	store.add(a)

	got, err := coord.Join(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.Waiting())

	evt := notifier.waitForEvent(t)
	assert.Equal(t, a.ID.String(), evt.AppointmentID)
	assert.Equal(t, "doc-1", evt.PractitionerID)
}

func TestJoinIsIdempotentWhileWaiting(t *testing.T) {
	store := newFakeStore()
	notifier := newRecordingNotifier()
	coord := NewCoordinator(store, nil, notifier, nil, nil)
	ctx := context.Background()

	a := scheduledAppointment("doc-1")
	store.add(a)

	first, err := coord.Join(ctx, a.ID)
	require.NoError(t, err)
	notifier.waitForEvent(t)

	second, err := coord.Join(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first.WaitingRoomJoinedAt.UTC(), second.WaitingRoomJoinedAt.UTC(),
		"rejoining without leaving keeps the original timestamp")

	select {
	case <-notifier.events:
		t.Fatal("idempotent rejoin must not re-notify the practitioner")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRejoinAfterLeaveStartsFreshWait(t *testing.T) {
	store := newFakeStore()
	notifier := newRecordingNotifier()
	coord := NewCoordinator(store, nil, notifier, nil, nil)
	ctx := context.Background()

	a := scheduledAppointment("doc-1")
	store.add(a)

	clock := time.Date(2026, time.March, 10, 9, 50, 0, 0, time.UTC)
	coord.SetNow(func() time.Time { return clock })

	first, err := coord.Join(ctx, a.ID)
	require.NoError(t, err)
	notifier.waitForEvent(t)

	clock = clock.Add(3 * time.Minute)
	_, err = coord.Leave(ctx, a.ID)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	rejoined, err := coord.Join(ctx, a.ID)
	require.NoError(t, err)
	notifier.waitForEvent(t)

	assert.True(t, rejoined.Waiting())
	assert.True(t, rejoined.WaitingRoomJoinedAt.After(*first.WaitingRoomJoinedAt),
		"rejoin after leave starts a fresh waiting period")
}

func TestLeaveAlwaysSucceeds(t *testing.T) {
	store := newFakeStore()
	coord := NewCoordinator(store, nil, nil, nil, nil)
	ctx := context.Background()

	a := scheduledAppointment("doc-1")
	a.Status = appointments.StatusCancelled
	store.add(a)

	got, err := coord.Leave(ctx, a.ID)
	require.NoError(t, err, "leaving is permitted whatever the status")
	assert.False(t, got.Waiting())

	// Leaving without ever joining is also fine.
	b := scheduledAppointment("doc-1")
	store.add(b)
	_, err = coord.Leave(ctx, b.ID)
	require.NoError(t, err)
}

func TestJoinUnknownAppointment(t *testing.T) {
	coord := NewCoordinator(newFakeStore(), nil, nil, nil, nil)
	_, err := coord.Join(context.Background(), uuid.New())
	assert.ErrorIs(t, err, appointments.ErrNotFound)
}

func TestListWaitingOrdersByJoinTime(t *testing.T) {
	store := newFakeStore()
	coord := NewCoordinator(store, nil, nil, nil, nil)
	ctx := context.Background()

	early := scheduledAppointment("doc-1")
	late := scheduledAppointment("doc-1")
	gone := scheduledAppointment("doc-1")
	other := scheduledAppointment("doc-2")
	for _, a := range []*appointments.Appointment{early, late, gone, other} {
		store.add(a)
	}

	clock := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	coord.SetNow(func() time.Time { return clock })

	_, err := coord.Join(ctx, early.ID)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	_, err = coord.Join(ctx, gone.ID)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	_, err = coord.Join(ctx, late.ID)
	require.NoError(t, err)
	_, err = coord.Join(ctx, other.ID)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	_, err = coord.Leave(ctx, gone.ID)
	require.NoError(t, err)

	waiting, err := coord.ListWaiting(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, waiting, 2, "departed patients and other practitioners excluded")
	assert.Equal(t, early.ID, waiting[0].ID, "earliest joiner first")
	assert.Equal(t, late.ID, waiting[1].ID)
}
