package annotation

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

// Handler exposes GET /routes/{routeId}/annotations, POST
// /routes/{routeId}/notes, and PUT /routes/{routeId}/progress (spec §6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts this handler's endpoints. The caller mounts it at
// /routes/{routeId} on the session-authenticated sub-router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/annotations", h.handleAnnotations)
	r.Post("/notes", h.handleUpsertNote)
	r.Put("/progress", h.handleUpsertProgress)
	return r
}

func routeIDFromPath(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "routeId"))
}

func (h *Handler) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	routeID, err := routeIDFromPath(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("routeId must be a valid UUID"))
		return
	}

	notes, err := h.svc.ListNotes(r.Context(), routeID, identity.UserID)
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	progress, err := h.svc.GetProgress(r.Context(), routeID, identity.UserID)
	if err != nil && !isDomainNotFound(err) {
		httpserver.RespondError(w, r, err)
		return
	}

	httpserver.Respond(w, http.StatusOK, annotationsDTO{
		Notes:       notesDTO(notes),
		Progress:    progressDTOPtr(progress, err == nil),
		GeneratedAt: time.Now().UTC().Format(httpserver.TimeFormat),
	})
}

func isDomainNotFound(err error) bool {
	de, ok := domain.AsError(err)
	return ok && de.Kind == domain.KindNotFound
}

type upsertNoteRequest struct {
	NoteID           uuid.UUID `json:"noteId" validate:"required"`
	POIID            *string   `json:"poiId,omitempty"`
	Body             string    `json:"body" validate:"required"`
	ExpectedRevision *uint32   `json:"expectedRevision,omitempty"`
}

func (h *Handler) handleUpsertNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	routeID, err := routeIDFromPath(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("routeId must be a valid UUID"))
		return
	}
	var req upsertNoteRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	note, err := h.svc.UpsertNote(r.Context(), UpsertNoteInput{
		RouteID:          routeID,
		UserID:           identity.UserID,
		NoteID:           req.NoteID,
		IdempotencyKey:   key,
		Body:             req.Body,
		POIID:            req.POIID,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, noteDTO(note))
}

type upsertProgressRequest struct {
	VisitedStopIDs   []string `json:"visitedStopIds" validate:"dive,required"`
	ExpectedRevision *uint32  `json:"expectedRevision,omitempty"`
}

func (h *Handler) handleUpsertProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	routeID, err := routeIDFromPath(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("routeId must be a valid UUID"))
		return
	}
	var req upsertProgressRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	progress, err := h.svc.UpsertProgress(r.Context(), UpsertProgressInput{
		RouteID:          routeID,
		UserID:           identity.UserID,
		IdempotencyKey:   key,
		VisitedStopIDs:   req.VisitedStopIDs,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, progressDTO(progress))
}

type noteHistoryDTO struct {
	OldBody   string `json:"oldBody"`
	NewBody   string `json:"newBody"`
	ChangedBy string `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
}

type noteResponseDTO struct {
	ID        string           `json:"id"`
	RouteID   string           `json:"routeId"`
	POIID     *string          `json:"poiId,omitempty"`
	Body      string           `json:"body"`
	Revision  uint32           `json:"revision"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
	History   []noteHistoryDTO `json:"history,omitempty"`
}

func noteDTO(n domain.RouteNote) noteResponseDTO {
	hist := make([]noteHistoryDTO, 0, len(n.History))
	for _, h := range n.History {
		hist = append(hist, noteHistoryDTO{
			OldBody:   h.OldBody,
			NewBody:   h.NewBody,
			ChangedBy: h.ChangedBy.String(),
			ChangedAt: h.ChangedAt.Format(httpserver.TimeFormat),
		})
	}
	return noteResponseDTO{
		ID:        n.ID.String(),
		RouteID:   n.RouteID.String(),
		POIID:     n.POIID,
		Body:      n.Body,
		Revision:  n.Revision,
		CreatedAt: n.CreatedAt.Format(httpserver.TimeFormat),
		UpdatedAt: n.UpdatedAt.Format(httpserver.TimeFormat),
		History:   hist,
	}
}

func notesDTO(notes []domain.RouteNote) []noteResponseDTO {
	out := make([]noteResponseDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteDTO(n))
	}
	return out
}

type progressResponseDTO struct {
	VisitedStopIDs []string `json:"visitedStopIds"`
	Revision       uint32   `json:"revision"`
	UpdatedAt      string   `json:"updatedAt"`
}

func progressDTO(p domain.RouteProgress) progressResponseDTO {
	return progressResponseDTO{
		VisitedStopIDs: p.VisitedStopIDs,
		Revision:       p.Revision,
		UpdatedAt:      p.UpdatedAt.Format(httpserver.TimeFormat),
	}
}

func progressDTOPtr(p domain.RouteProgress, present bool) *progressResponseDTO {
	if !present {
		return nil
	}
	dto := progressDTO(p)
	return &dto
}

type annotationsDTO struct {
	Notes       []noteResponseDTO   `json:"notes"`
	Progress    *progressResponseDTO `json:"progress,omitempty"`
	GeneratedAt string              `json:"generatedAt"`
}
