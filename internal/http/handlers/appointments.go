// Package handlers exposes the booking subsystem over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/availability"
	"github.com/wolfman30/telecare-platform/internal/events"
	"github.com/wolfman30/telecare-platform/internal/http/middleware"
	"github.com/wolfman30/telecare-platform/internal/intake"
	"github.com/wolfman30/telecare-platform/internal/notify"
	"github.com/wolfman30/telecare-platform/internal/reminders"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// AppointmentsHandler serves the appointment lifecycle endpoints.
type AppointmentsHandler struct {
	svc       *appointments.Service
	checker   *availability.Checker
	suggester intake.Suggester
	notifier  *notify.Service
	reminders *reminders.Scheduler
	logger    *logging.Logger
}

// NewAppointmentsHandler creates the lifecycle handler. Notifier,
// suggester and reminder scheduler may be nil.
func NewAppointmentsHandler(svc *appointments.Service, checker *availability.Checker, suggester intake.Suggester, notifier *notify.Service, remindSched *reminders.Scheduler, logger *logging.Logger) *AppointmentsHandler {
	if svc == nil {
		panic("handlers: appointment service required")
	}
	if checker == nil {
		panic("handlers: availability checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{
		svc:       svc,
		checker:   checker,
		suggester: suggester,
		notifier:  notifier,
		reminders: remindSched,
		logger:    logger,
	}
}

// BookRequest is the booking request body.
type BookRequest struct {
	ID             string          `json:"id,omitempty"`
	PractitionerID string          `json:"practitioner_id"`
	ScheduledAt    time.Time       `json:"scheduled_at"`
	Channel        string          `json:"channel,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Intake         *intake.Request `json:"intake,omitempty"`
}

// Book handles POST /appointments.
func (h *AppointmentsHandler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	var id uuid.UUID
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			http.Error(w, `{"error": "id must be a UUID"}`, http.StatusBadRequest)
			return
		}
		id = parsed
	}

	// Pre-check availability so the caller gets an actionable message;
	// the store re-checks authoritatively at insert time.
	if req.PractitionerID != "" && !req.ScheduledAt.IsZero() {
		free, err := h.checker.IsAvailable(r.Context(), req.PractitionerID, req.ScheduledAt)
		if err != nil {
			h.logger.Error("availability check failed", "error", err, "practitioner_id", req.PractitionerID)
			writeError(w, &appointments.TransientError{Op: "check availability", Err: err})
			return
		}
		if !free {
			writeError(w, &appointments.UnavailableError{
				PractitionerID: req.PractitionerID,
				Reason:         "practitioner is not available at this time",
			})
			return
		}
	}

	var in *appointments.Intake
	if req.Intake != nil {
		in = intake.Capture(r.Context(), *req.Intake, h.suggester, h.logger)
	}

	a, err := h.svc.Book(r.Context(), appointments.BookRequest{
		ID:             id,
		PatientID:      actor.UserID,
		PractitionerID: req.PractitionerID,
		ScheduledAt:    req.ScheduledAt,
		Channel:        appointments.Channel(req.Channel),
		Notes:          req.Notes,
		Intake:         in,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.notifier != nil {
		evt := events.AppointmentBookedV1{
			EventID:        uuid.NewString(),
			AppointmentID:  a.ID.String(),
			PatientID:      a.PatientID,
			PractitionerID: a.PractitionerID,
			ScheduledAt:    a.ScheduledAt,
			Channel:        string(a.Channel),
			BookedAt:       a.CreatedAt,
		}
		go h.notifier.AppointmentBooked(context.WithoutCancel(r.Context()), evt)
	}
	if h.reminders != nil {
		if _, err := h.reminders.Schedule(r.Context(), a); err != nil {
			h.logger.Warn("reminder scheduling failed", "appointment_id", a.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, a)
}

// Get handles GET /appointments/{id}.
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// List handles GET /appointments scoped to the caller.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
		return
	}
	f := appointments.Filter{OrderBy: appointments.OrderByScheduledAt}
	if actor.Role == appointments.RolePractitioner {
		f.PractitionerID = actor.UserID
	} else {
		f.PatientID = actor.UserID
	}
	if r.URL.Query().Get("active") == "true" {
		f.Statuses = appointments.ActiveStatuses
	}
	list, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": list})
}

// Start handles POST /appointments/{id}/start.
func (h *AppointmentsHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Start)
}

// Complete handles POST /appointments/{id}/complete.
func (h *AppointmentsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id uuid.UUID, actor appointments.Actor) (*appointments.Appointment, error) {
		a, err := h.svc.Complete(ctx, id, actor)
		if err != nil {
			return nil, err
		}
		h.dismissReminder(ctx, a)
		return a, nil
	})
}

// Cancel handles POST /appointments/{id}/cancel.
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id uuid.UUID, actor appointments.Actor) (*appointments.Appointment, error) {
		a, err := h.svc.Cancel(ctx, id, actor)
		if err != nil {
			return nil, err
		}
		h.dismissReminder(ctx, a)
		if h.notifier != nil {
			evt := events.AppointmentCancelledV1{
				EventID:        uuid.NewString(),
				AppointmentID:  a.ID.String(),
				PatientID:      a.PatientID,
				PractitionerID: a.PractitionerID,
				ScheduledAt:    a.ScheduledAt,
				CancelledBy:    actor.UserID,
				CancelledAt:    a.UpdatedAt,
			}
			go h.notifier.AppointmentCancelled(context.Background(), evt)
		}
		return a, nil
	})
}

func (h *AppointmentsHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, appointments.Actor) (*appointments.Appointment, error)) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, `{"error": "authentication required"}`, http.StatusUnauthorized)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := op(r.Context(), id, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentsHandler) dismissReminder(ctx context.Context, a *appointments.Appointment) {
	if h.reminders == nil {
		return
	}
	if err := h.reminders.Dismiss(ctx, a); err != nil {
		h.logger.Warn("reminder dismissal failed", "appointment_id", a.ID, "error", err)
	}
}

func actorFrom(r *http.Request) (appointments.Actor, bool) {
	claims, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		return appointments.Actor{}, false
	}
	return appointments.Actor{
		UserID: claims.Subject,
		Role:   appointments.Role(claims.Role),
	}, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, `{"error": "appointment id must be a UUID"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Business-rule
// failures carry their message; infrastructure failures get a generic
// retry prompt.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *appointments.ValidationError
		state      *appointments.InvalidStateError
		unavail    *appointments.UnavailableError
		permission *appointments.PermissionError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.Is(err, appointments.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
	case errors.As(err, &state):
		writeJSON(w, http.StatusConflict, map[string]string{"error": state.Error()})
	case errors.As(err, &unavail):
		writeJSON(w, http.StatusConflict, map[string]string{"error": unavail.Error()})
	case errors.As(err, &permission):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": permission.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "temporary problem, please retry"})
	}
}
