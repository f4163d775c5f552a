package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/session"
	"github.com/wolfman30/telecare-platform/internal/stream"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// WatchHandler streams appointment snapshots over a websocket so clients
// re-evaluate derived state on every change instead of caching it.
type WatchHandler struct {
	store    appointments.Store
	feed     *stream.Feed
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// NewWatchHandler creates the watch handler.
func NewWatchHandler(store appointments.Store, feed *stream.Feed, logger *logging.Logger) *WatchHandler {
	if store == nil {
		panic("handlers: store required")
	}
	if feed == nil {
		panic("handlers: feed required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WatchHandler{
		store:  store,
		feed:   feed,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// snapshotFrame is one websocket message.
type snapshotFrame struct {
	Appointment         *appointments.Appointment `json:"appointment"`
	CanEstablishSession bool                      `json:"can_establish_session"`
}

// Watch handles GET /appointments/{id}/watch. The initial frame carries
// the current record; subsequent frames follow every committed change.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("watch upgrade failed", "appointment_id", id, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx := r.Context()
	updates, stop := h.feed.Subscribe(ctx, id)
	defer stop()

	if err := conn.WriteJSON(snapshotFrame{Appointment: current, CanEstablishSession: session.CanEstablish(current)}); err != nil {
		return
	}

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case a, open := <-updates:
			if !open {
				return
			}
			frame := snapshotFrame{Appointment: &a, CanEstablishSession: session.CanEstablish(&a)}
			if err := conn.WriteJSON(frame); err != nil {
				h.logger.Debug("watch connection closed", "appointment_id", id, "error", err)
				return
			}
		}
	}
}
