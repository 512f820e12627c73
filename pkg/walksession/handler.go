package walksession

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes POST /walk-sessions (spec §6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreate)
	r.Get("/{sessionId}", h.handleGet)
	return r
}

type statsRequest struct {
	DistanceMeters      float64 `json:"distanceMeters"`
	DurationSeconds     float64 `json:"durationSeconds"`
	ElevationGainMeters float64 `json:"elevationGainMeters"`
}

type createRequest struct {
	ID                uuid.UUID    `json:"id" validate:"required"`
	RouteID           uuid.UUID    `json:"routeId" validate:"required"`
	StartedAt         time.Time    `json:"startedAt" validate:"required"`
	EndedAt           *time.Time   `json:"endedAt,omitempty"`
	Stats             statsRequest `json:"stats"`
	HighlightedPOIIDs []string     `json:"highlightedPoiIds"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	var req createRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.svc.Create(r.Context(), CreateInput{
		UserID:    identity.UserID,
		ID:        req.ID,
		RouteID:   req.RouteID,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
		Stats: domain.WalkSessionStats{
			DistanceMeters:      req.Stats.DistanceMeters,
			DurationSeconds:     req.Stats.DurationSeconds,
			ElevationGainMeters: req.Stats.ElevationGainMeters,
		},
		HighlightedPOIIDs: req.HighlightedPOIIDs,
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, sessionDTO(session))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("sessionId must be a valid UUID"))
		return
	}
	session, err := h.svc.Get(r.Context(), identity.UserID, sessionID)
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, sessionDTO(session))
}

type sessionResponseDTO struct {
	ID                string       `json:"id"`
	RouteID           string       `json:"routeId"`
	StartedAt         string       `json:"startedAt"`
	EndedAt           *string      `json:"endedAt,omitempty"`
	Stats             statsRequest `json:"stats"`
	HighlightedPOIIDs []string     `json:"highlightedPoiIds"`
}

func sessionDTO(w domain.WalkSession) sessionResponseDTO {
	var endedAt *string
	if w.EndedAt != nil {
		v := w.EndedAt.Format(httpserver.TimeFormat)
		endedAt = &v
	}
	return sessionResponseDTO{
		ID:        w.ID.String(),
		RouteID:   w.RouteID.String(),
		StartedAt: w.StartedAt.Format(httpserver.TimeFormat),
		EndedAt:   endedAt,
		Stats: statsRequest{
			DistanceMeters:      w.Stats.DistanceMeters,
			DurationSeconds:     w.Stats.DurationSeconds,
			ElevationGainMeters: w.Stats.ElevationGainMeters,
		},
		HighlightedPOIIDs: w.HighlightedPOIIDs,
	}
}
