package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/telecare-platform/internal/availability"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// AvailabilityHandler answers slot-availability queries.
type AvailabilityHandler struct {
	checker *availability.Checker
	logger  *logging.Logger
}

// NewAvailabilityHandler creates the availability handler.
func NewAvailabilityHandler(checker *availability.Checker, logger *logging.Logger) *AvailabilityHandler {
	if checker == nil {
		panic("handlers: availability checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{checker: checker, logger: logger}
}

// Check handles GET /practitioners/{practitionerID}/availability?at=RFC3339.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	practitionerID := chi.URLParam(r, "practitionerID")
	if practitionerID == "" {
		http.Error(w, `{"error": "practitioner id required"}`, http.StatusBadRequest)
		return
	}
	raw := r.URL.Query().Get("at")
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		http.Error(w, `{"error": "at must be an RFC3339 timestamp"}`, http.StatusBadRequest)
		return
	}

	free, err := h.checker.IsAvailable(r.Context(), practitionerID, at)
	if err != nil {
		h.logger.Error("availability check failed", "error", err, "practitioner_id", practitionerID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "temporary problem, please retry"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"practitioner_id": practitionerID,
		"at":              at,
		"available":       free,
	})
}
