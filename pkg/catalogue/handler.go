package catalogue

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/httpserver"
)

// Handler exposes GET /catalogue/explore and GET /catalogue/descriptors
// (spec §6). Both require a session and are served with
// Cache-Control: private, no-cache, must-revalidate (spec §4.4).
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/explore", h.handleExplore)
	r.Get("/descriptors", h.handleDescriptors)
	return r
}

const cacheControlValue = "private, no-cache, must-revalidate"

func (h *Handler) handleExplore(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	snap, err := h.svc.Explore(r.Context())
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", cacheControlValue)
	httpserver.Respond(w, http.StatusOK, exploreDTO(snap))
}

func (h *Handler) handleDescriptors(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		httpserver.RespondError(w, r, domain.Unauthorized("session required"))
		return
	}
	snap, err := h.svc.Descriptors(r.Context())
	if err != nil {
		httpserver.RespondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", cacheControlValue)
	httpserver.Respond(w, http.StatusOK, descriptorDTO(snap))
}

type routeSummaryDTO struct {
	ID             string            `json:"id"`
	Title          map[string]string `json:"title"`
	Icon           string            `json:"icon"`
	DistanceMeters float64           `json:"distanceMeters"`
	CategoryID     string            `json:"categoryId"`
}

type routeCategoryDTO struct {
	ID    string            `json:"id"`
	Title map[string]string `json:"title"`
	Icon  string            `json:"icon"`
}

type themeDTO struct {
	ID       string            `json:"id"`
	Title    map[string]string `json:"title"`
	RouteIDs []string          `json:"routeIds"`
}

type routeCollectionDTO struct {
	ID       string            `json:"id"`
	Title    map[string]string `json:"title"`
	RouteIDs []string          `json:"routeIds"`
}

type trendingDTO struct {
	RouteID string            `json:"routeId"`
	Reason  map[string]string `json:"reason"`
}

type communityPickDTO struct {
	RouteID   string            `json:"routeId"`
	CuratorID string            `json:"curatorId"`
	Note      map[string]string `json:"note"`
}

type exploreSnapshotDTO struct {
	Summaries   []routeSummaryDTO    `json:"summaries"`
	Categories  []routeCategoryDTO   `json:"categories"`
	Themes      []themeDTO           `json:"themes"`
	Collections []routeCollectionDTO `json:"collections"`
	Trending    []trendingDTO        `json:"trending"`
	Picks       []communityPickDTO   `json:"picks"`
	GeneratedAt string               `json:"generatedAt"`
}

func exploreDTO(s domain.ExploreCatalogueSnapshot) exploreSnapshotDTO {
	summaries := make([]routeSummaryDTO, 0, len(s.Summaries))
	for _, r := range s.Summaries {
		summaries = append(summaries, routeSummaryDTO{ID: r.ID, Title: map[string]string(r.Title), Icon: r.Icon.String(), DistanceMeters: r.DistanceMeters, CategoryID: r.CategoryID})
	}
	categories := make([]routeCategoryDTO, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, routeCategoryDTO{ID: c.ID, Title: map[string]string(c.Title), Icon: c.Icon.String()})
	}
	themes := make([]themeDTO, 0, len(s.Themes))
	for _, t := range s.Themes {
		themes = append(themes, themeDTO{ID: t.ID, Title: map[string]string(t.Title), RouteIDs: t.RouteIDs})
	}
	collections := make([]routeCollectionDTO, 0, len(s.Collections))
	for _, c := range s.Collections {
		collections = append(collections, routeCollectionDTO{ID: c.ID, Title: map[string]string(c.Title), RouteIDs: c.RouteIDs})
	}
	trending := make([]trendingDTO, 0, len(s.Trending))
	for _, t := range s.Trending {
		trending = append(trending, trendingDTO{RouteID: t.RouteID, Reason: map[string]string(t.Reason)})
	}
	picks := make([]communityPickDTO, 0, len(s.Picks))
	for _, p := range s.Picks {
		picks = append(picks, communityPickDTO{RouteID: p.RouteID, CuratorID: p.CuratorID, Note: map[string]string(p.Note)})
	}
	return exploreSnapshotDTO{
		Summaries:   summaries,
		Categories:  categories,
		Themes:      themes,
		Collections: collections,
		Trending:    trending,
		Picks:       picks,
		GeneratedAt: s.GeneratedAt.Format(httpserver.TimeFormat),
	}
}

type tagDTO struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"label"`
}

type badgeDTO struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"label"`
	Icon  string            `json:"icon"`
}

type safetyToggleDTO struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"label"`
}

type safetyPresetDTO struct {
	ID        string            `json:"id"`
	Label     map[string]string `json:"label"`
	ToggleIDs []string          `json:"toggleIds"`
}

type interestThemeDTO struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"label"`
	Icon  string            `json:"icon"`
}

type descriptorSnapshotDTO struct {
	Tags           []tagDTO           `json:"tags"`
	Badges         []badgeDTO         `json:"badges"`
	SafetyToggles  []safetyToggleDTO  `json:"safetyToggles"`
	SafetyPresets  []safetyPresetDTO  `json:"safetyPresets"`
	InterestThemes []interestThemeDTO `json:"interestThemes"`
	GeneratedAt    string             `json:"generatedAt"`
}

func descriptorDTO(s domain.DescriptorSnapshot) descriptorSnapshotDTO {
	tags := make([]tagDTO, 0, len(s.Tags))
	for _, t := range s.Tags {
		tags = append(tags, tagDTO{ID: t.ID, Label: map[string]string(t.Label)})
	}
	badges := make([]badgeDTO, 0, len(s.Badges))
	for _, b := range s.Badges {
		badges = append(badges, badgeDTO{ID: b.ID, Label: map[string]string(b.Label), Icon: b.Icon.String()})
	}
	toggles := make([]safetyToggleDTO, 0, len(s.SafetyToggles))
	for _, t := range s.SafetyToggles {
		toggles = append(toggles, safetyToggleDTO{ID: t.ID, Label: map[string]string(t.Label)})
	}
	presets := make([]safetyPresetDTO, 0, len(s.SafetyPresets))
	for _, p := range s.SafetyPresets {
		presets = append(presets, safetyPresetDTO{ID: p.ID, Label: map[string]string(p.Label), ToggleIDs: p.ToggleIDs})
	}
	themes := make([]interestThemeDTO, 0, len(s.InterestThemes))
	for _, t := range s.InterestThemes {
		themes = append(themes, interestThemeDTO{ID: t.ID, Label: map[string]string(t.Label), Icon: t.Icon.String()})
	}
	return descriptorSnapshotDTO{
		Tags:           tags,
		Badges:         badges,
		SafetyToggles:  toggles,
		SafetyPresets:  presets,
		InterestThemes: themes,
		GeneratedAt:    s.GeneratedAt.Format(httpserver.TimeFormat),
	}
}
