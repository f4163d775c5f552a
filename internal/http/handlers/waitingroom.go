package handlers

import (
	"net/http"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/waitingroom"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// WaitingRoomHandler serves waiting-room presence endpoints.
type WaitingRoomHandler struct {
	coordinator *waitingroom.Coordinator
	logger      *logging.Logger
}

// NewWaitingRoomHandler creates the waiting-room handler.
func NewWaitingRoomHandler(coordinator *waitingroom.Coordinator, logger *logging.Logger) *WaitingRoomHandler {
	if coordinator == nil {
		panic("handlers: waiting room coordinator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WaitingRoomHandler{coordinator: coordinator, logger: logger}
}

// Join handles POST /appointments/{id}/waiting-room/join.
func (h *WaitingRoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.coordinator.Join(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Leave handles POST /appointments/{id}/waiting-room/leave.
func (h *WaitingRoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.coordinator.Leave(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListWaiting handles GET /waiting-room. Practitioners only; the queue
// is ordered earliest-waiting first.
func (h *WaitingRoomHandler) ListWaiting(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
		return
	}
	if actor.Role != appointments.RolePractitioner {
		http.Error(w, `{"error": "practitioner role required"}`, http.StatusForbidden)
		return
	}
	waiting, err := h.coordinator.ListWaiting(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"waiting": waiting})
}
