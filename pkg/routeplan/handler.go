package routeplan

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes POST /routes (spec §6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleSubmit)
	return r
}

const maxRoutePayloadBytes = 1 << 20 // 1 MiB

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRoutePayloadBytes+1))
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("failed to read request body"))
		return
	}
	if len(body) > maxRoutePayloadBytes {
		httpserver.RespondError(w, r, domain.InvalidRequest("request body too large"))
		return
	}

	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	result, err := h.svc.Submit(r.Context(), SubmitInput{
		UserID:         identity.UserID,
		IdempotencyKey: key,
		Payload:        json.RawMessage(body),
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusAccepted, submitResponseDTO{
		RequestID: result.RequestID.String(),
		Status:    string(result.Status),
	})
}

type submitResponseDTO struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}
