package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateResponse struct {
	CanEstablishSession bool `json:"can_establish_session"`
}

func TestSessionGateCheck(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")
	doctor := participantToken(t, "doc-1", "practitioner")

	a := bookAt(t, env, patient, "doc-1", futureSlot())
	base := "/appointments/" + a.ID.String()

	var gate gateResponse

	rec := env.do(t, http.MethodGet, base+"/session-gate", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gate))
	assert.False(t, gate.CanEstablishSession, "scheduled appointments do not admit sessions")

	rec = env.do(t, http.MethodPost, base+"/start", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/session-gate", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gate))
	assert.True(t, gate.CanEstablishSession)

	rec = env.do(t, http.MethodPost, base+"/complete", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/session-gate", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gate))
	assert.False(t, gate.CanEstablishSession, "completion revokes permission")
}

func TestSessionGateUnknownAppointment(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")

	rec := env.do(t, http.MethodGet, "/appointments/"+uuid.NewString()+"/session-gate", patient, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionAwaitTimesOut(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")

	a := bookAt(t, env, patient, "doc-1", futureSlot())

	rec := env.do(t, http.MethodPost, "/appointments/"+a.ID.String()+"/session-gate/await", patient, nil)
	assert.Equal(t, http.StatusRequestTimeout, rec.Code, "nobody started the session")

	var gate gateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gate))
	assert.False(t, gate.CanEstablishSession)
}

func TestSessionAwaitOpensAfterStart(t *testing.T) {
	env := newTestEnv(t)
	patient := participantToken(t, "pat-1", "patient")
	doctor := participantToken(t, "doc-1", "practitioner")

	a := bookAt(t, env, patient, "doc-1", futureSlot())
	base := "/appointments/" + a.ID.String()

	rec := env.do(t, http.MethodPost, base+"/start", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/session-gate/await", patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var gate gateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gate))
	assert.True(t, gate.CanEstablishSession)
}
