package preferences

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes GET/PUT /users/me/preferences (spec §6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts this handler's endpoints. The caller mounts it at
// /users/me/preferences on the session-authenticated sub-router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleGet)
	r.Put("/", h.handleUpdate)
	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}

	prefs, err := h.svc.Get(r.Context(), identity.UserID)
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, toDTO(prefs))
}

type updateRequest struct {
	InterestThemeIDs []string `json:"interestThemeIds" validate:"dive,required"`
	SafetyToggleIDs  []string `json:"safetyToggleIds" validate:"dive,required"`
	UnitSystem       string   `json:"unitSystem" validate:"required,oneof=metric imperial"`
	ExpectedRevision *uint32  `json:"expectedRevision,omitempty"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}

	var req updateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	prefs, err := h.svc.Update(r.Context(), UpdateInput{
		UserID:           identity.UserID,
		IdempotencyKey:   key,
		InterestThemeIDs: req.InterestThemeIDs,
		SafetyToggleIDs:  req.SafetyToggleIDs,
		UnitSystem:       domain.UnitSystem(req.UnitSystem),
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, toDTO(prefs))
}

type preferencesDTO struct {
	UserID           uuid.UUID `json:"userId"`
	InterestThemeIDs []string  `json:"interestThemeIds"`
	SafetyToggleIDs  []string  `json:"safetyToggleIds"`
	UnitSystem       string    `json:"unitSystem"`
	Revision         uint32    `json:"revision"`
	UpdatedAt        string    `json:"updatedAt"`
}

func toDTO(p domain.UserPreferences) preferencesDTO {
	return preferencesDTO{
		UserID:           p.UserID,
		InterestThemeIDs: p.InterestThemeIDs,
		SafetyToggleIDs:  p.SafetyToggleIDs,
		UnitSystem:       string(p.UnitSystem),
		Revision:         p.Revision,
		UpdatedAt:        p.UpdatedAt.Format(httpserver.TimeFormat),
	}
}
