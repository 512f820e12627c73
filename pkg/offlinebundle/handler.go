package offlinebundle

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes GET/POST /offline/bundles and DELETE
// /offline/bundles/{bundleId} (spec §6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Delete("/{bundleId}", h.handleDelete)
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	deviceID := r.URL.Query().Get("deviceId")
	bundles, err := h.svc.List(r.Context(), identity.UserID, deviceID)
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, bundlesDTO(bundles))
}

type boundsRequest struct {
	MinLng float64 `json:"minLng" validate:"required"`
	MinLat float64 `json:"minLat" validate:"required"`
	MaxLng float64 `json:"maxLng" validate:"required"`
	MaxLat float64 `json:"maxLat" validate:"required"`
}

type zoomRequest struct {
	MinZoom int `json:"minZoom"`
	MaxZoom int `json:"maxZoom"`
}

type createRequest struct {
	ID            uuid.UUID     `json:"id" validate:"required"`
	DeviceID      string        `json:"deviceId" validate:"required"`
	Bounds        boundsRequest `json:"bounds" validate:"required"`
	Zoom          zoomRequest   `json:"zoom"`
	EstimatedSize int64         `json:"estimatedSize"`
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
	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	bundle, err := h.svc.Create(r.Context(), CreateInput{
		UserID:         identity.UserID,
		IdempotencyKey: key,
		ID:             req.ID,
		DeviceID:       req.DeviceID,
		Bounds: domain.BoundingBox{
			MinLng: req.Bounds.MinLng,
			MinLat: req.Bounds.MinLat,
			MaxLng: req.Bounds.MaxLng,
			MaxLat: req.Bounds.MaxLat,
		},
		Zoom: domain.ZoomRange{
			MinZoom: req.Zoom.MinZoom,
			MaxZoom: req.Zoom.MaxZoom,
		},
		EstimatedSize: req.EstimatedSize,
	})
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, bundleDTO(bundle))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	bundleID, err := uuid.Parse(chi.URLParam(r, "bundleId"))
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("bundleId must be a valid UUID"))
		return
	}
	key, err := httpserver.ParseIdempotencyKey(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}
	if err := h.svc.Delete(r.Context(), DeleteInput{UserID: identity.UserID, IdempotencyKey: key, BundleID: bundleID}); err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, map[string]string{"bundleId": bundleID.String()})
}

type bundleResponseDTO struct {
	ID            string  `json:"id"`
	DeviceID      string  `json:"deviceId"`
	Bounds        boundsRequest `json:"bounds"`
	Zoom          zoomRequest   `json:"zoom"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
	EstimatedSize int64   `json:"estimatedSize"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func bundleDTO(b domain.OfflineBundle) bundleResponseDTO {
	return bundleResponseDTO{
		ID:       b.ID.String(),
		DeviceID: b.DeviceID,
		Bounds: boundsRequest{
			MinLng: b.Bounds.MinLng,
			MinLat: b.Bounds.MinLat,
			MaxLng: b.Bounds.MaxLng,
			MaxLat: b.Bounds.MaxLat,
		},
		Zoom: zoomRequest{
			MinZoom: b.Zoom.MinZoom,
			MaxZoom: b.Zoom.MaxZoom,
		},
		Status:        string(b.Status),
		Progress:      float64(b.Progress),
		EstimatedSize: b.EstimatedSize,
		CreatedAt:     b.CreatedAt.Format(httpserver.TimeFormat),
		UpdatedAt:     b.UpdatedAt.Format(httpserver.TimeFormat),
	}
}

func bundlesDTO(bundles []domain.OfflineBundle) []bundleResponseDTO {
	out := make([]bundleResponseDTO, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, bundleDTO(b))
	}
	return out
}
