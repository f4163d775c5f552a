package practitioners

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// Handler provides HTTP endpoints for practitioner profile management.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates the profile handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// GetProfile returns the practitioner's stored configuration.
// GET /practitioners/{practitionerID}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	practitionerID := chi.URLParam(r, "practitionerID")
	if practitionerID == "" {
		http.Error(w, `{"error": "practitioner id required"}`, http.StatusBadRequest)
		return
	}
	p, err := h.store.Get(r.Context(), practitionerID)
	if err != nil {
		h.logger.Error("failed to get practitioner profile", "practitioner_id", practitionerID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, `{"error": "profile not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// UpdateProfileRequest is the request body for updating a profile.
type UpdateProfileRequest struct {
	DisplayName    string       `json:"display_name,omitempty"`
	Specialization string       `json:"specialization,omitempty"`
	Email          string       `json:"email,omitempty"`
	WorkingHours   *WeeklyHours `json:"working_hours,omitempty"`
}

// UpdateProfile creates or updates the practitioner configuration.
// PUT /practitioners/{practitionerID}/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	practitionerID := chi.URLParam(r, "practitionerID")
	if practitionerID == "" {
		http.Error(w, `{"error": "practitioner id required"}`, http.StatusBadRequest)
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	existing, err := h.store.Get(r.Context(), practitionerID)
	if err != nil {
		h.logger.Error("failed to load practitioner profile", "practitioner_id", practitionerID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if existing == nil {
		existing = &Profile{PractitionerID: practitionerID}
	}
	if req.DisplayName != "" {
		existing.DisplayName = req.DisplayName
	}
	if req.Specialization != "" {
		existing.Specialization = req.Specialization
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.WorkingHours != nil {
		existing.WorkingHours = req.WorkingHours
	}

	if err := h.store.Set(r.Context(), existing); err != nil {
		h.logger.Error("failed to save practitioner profile", "practitioner_id", practitionerID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)
}
