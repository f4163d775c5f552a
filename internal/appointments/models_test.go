package appointments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusActive(t *testing.T) {
	assert.True(t, StatusScheduled.Active())
	assert.True(t, StatusInProgress.Active())
	assert.False(t, StatusCompleted.Active())
	assert.False(t, StatusCancelled.Active())
}

func TestAppointmentWaiting(t *testing.T) {
	now := time.Now().UTC()

	a := &Appointment{}
	assert.False(t, a.Waiting(), "never joined")

	a.WaitingRoomJoinedAt = &now
	assert.True(t, a.Waiting(), "joined, not left")

	left := now.Add(5 * time.Minute)
	a.WaitingRoomLeftAt = &left
	assert.False(t, a.Waiting(), "joined then left")
}
