package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telecare-platform/internal/appointments"
)

func bookAt(t *testing.T, env *testEnv, patientToken, practitionerID string, at time.Time) appointments.Appointment {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/appointments", patientToken, map[string]any{
		"practitioner_id": practitionerID,
		"scheduled_at":    at,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeAppointment(t, rec)
}

func TestWaitingRoomJoinAndLeave(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")
	a := bookAt(t, env, patient, "doc-1", futureSlot())
	base := "/appointments/" + a.ID.String() + "/waiting-room"

	rec := env.do(t, http.MethodPost, base+"/join", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decodeAppointment(t, rec)
	assert.True(t, joined.Waiting())

	rec = env.do(t, http.MethodPost, base+"/leave", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	left := decodeAppointment(t, rec)
	assert.False(t, left.Waiting())
}

func TestWaitingRoomJoinUnknownAppointment(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")

	rec := env.do(t, http.MethodPost, "/appointments/"+uuid.NewString()+"/waiting-room/join", patient, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaitingRoomListRequiresPractitioner(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")

	rec := env.do(t, http.MethodGet, "/waiting-room", patient, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWaitingRoomListShowsQueue(t *testing.T) {
	env := newTestEnv(t)
	first := participantToken(t, "pat-1", "patient")
	second := participantToken(t, "pat-2", "patient")
	doctor := participantToken(t, "doc-1", "practitioner")

	slot := futureSlot()
	a := bookAt(t, env, first, "doc-1", slot)
	// The second booking sits outside the conflict window.
	bookAt(t, env, second, "doc-1", slot.Add(time.Hour))

	rec := env.do(t, http.MethodPost, "/appointments/"+a.ID.String()+"/waiting-room/join", first, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/waiting-room", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Waiting []appointments.Appointment `json:"waiting"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Waiting, 1)
	assert.Equal(t, a.ID, body.Waiting[0].ID)
}
