package enrichment

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes GET /admin/enrichment/provenance (spec §6, §4.6).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/provenance", h.handleListProvenance)
	return r
}

func (h *Handler) handleListProvenance(w http.ResponseWriter, r *http.Request) {
	params, err := httpserver.ParseProvenanceParams(r)
	if err != nil {
		httpserver.RespondError(w, r, domain.InvalidRequest("%s", err.Error()))
		return
	}

	records, err := h.svc.ListProvenance(r.Context(), params.Limit, params.Before)
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}

	page := httpserver.NewProvenancePage(records, params.Limit, func(r domain.EnrichmentProvenanceRecord) time.Time {
		return r.ImportedAt
	})
	httpserver.Respond(w, http.StatusOK, toPageDTO(page))
}

type provenanceRecordDTO struct {
	ID         string  `json:"id"`
	SourceURL  string  `json:"sourceUrl"`
	ImportedAt string  `json:"importedAt"`
	MinLng     float64 `json:"minLng"`
	MinLat     float64 `json:"minLat"`
	MaxLng     float64 `json:"maxLng"`
	MaxLat     float64 `json:"maxLat"`
}

type provenancePageDTO struct {
	Records    []provenanceRecordDTO `json:"records"`
	NextBefore *string               `json:"nextBefore,omitempty"`
}

func toPageDTO(page httpserver.ProvenancePage[domain.EnrichmentProvenanceRecord]) provenancePageDTO {
	records := make([]provenanceRecordDTO, 0, len(page.Records))
	for _, r := range page.Records {
		records = append(records, provenanceRecordDTO{
			ID:         r.ID.String(),
			SourceURL:  r.SourceURL,
			ImportedAt: r.ImportedAt.Format(httpserver.TimeFormat),
			MinLng:     r.Bounds.MinLng,
			MinLat:     r.Bounds.MinLat,
			MaxLng:     r.Bounds.MaxLng,
			MaxLat:     r.Bounds.MaxLat,
		})
	}
	return provenancePageDTO{Records: records, NextBefore: page.NextBefore}
}
