package handlers

import (
	"errors"
	"net/http"

	"github.com/wolfman30/telecare-platform/internal/session"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// SessionHandler exposes the hand-off gate to live-session clients.
type SessionHandler struct {
	gate    *session.Gate
	awaiter *session.Awaiter
	logger  *logging.Logger
}

// NewSessionHandler creates the session gate handler.
func NewSessionHandler(gate *session.Gate, awaiter *session.Awaiter, logger *logging.Logger) *SessionHandler {
	if gate == nil {
		panic("handlers: session gate required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{gate: gate, awaiter: awaiter, logger: logger}
}

// Check handles GET /appointments/{id}/session-gate. The result is a
// point-in-time answer; clients must re-check on every state change.
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	allowed, err := h.gate.CanEstablishSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointment_id":        id,
		"can_establish_session": allowed,
	})
}

// Await handles POST /appointments/{id}/session-gate/await: block until
// the gate opens or the polling ceiling is hit, then answer like Check.
func (h *SessionHandler) Await(w http.ResponseWriter, r *http.Request) {
	if h.awaiter == nil {
		http.Error(w, `{"error": "awaiting not enabled"}`, http.StatusNotImplemented)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.awaiter.Await(r.Context(), id)
	if errors.Is(err, session.ErrHandoffTimeout) {
		writeJSON(w, http.StatusRequestTimeout, map[string]any{
			"appointment_id":        id,
			"can_establish_session": false,
			"error":                 "session was not started in time",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointment_id":        id,
		"can_establish_session": true,
	})
}
