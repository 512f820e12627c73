package domain

import "time"

// RouteSummary is a lightweight route card shown in catalogue listings.
type RouteSummary struct {
	ID            string
	Title         LocalizationMap
	Icon          IconIdentifier
	DistanceMeters float64
	CategoryID    string
}

// RouteCategory groups routes under a themed heading.
type RouteCategory struct {
	ID    string
	Title LocalizationMap
	Icon  IconIdentifier
}

// Theme is an interest-theme catalogue entry (distinct from a descriptor
// InterestTheme — the catalogue copy carries curated route refs).
type Theme struct {
	ID      string
	Title   LocalizationMap
	RouteIDs []string
}

// RouteCollection is a curated, ordered set of routes.
type RouteCollection struct {
	ID      string
	Title   LocalizationMap
	RouteIDs []string
}

// TrendingRouteHighlight surfaces a route with a reason string.
type TrendingRouteHighlight struct {
	RouteID string
	Reason  LocalizationMap
}

// CommunityPick is a human-curated route recommendation.
type CommunityPick struct {
	RouteID   string
	CuratorID string
	Note      LocalizationMap
}

// ExploreCatalogueSnapshot is the deterministic assembly served by
// GET /api/v1/catalogue/explore (spec §3).
type ExploreCatalogueSnapshot struct {
	Summaries   []RouteSummary
	Categories  []RouteCategory
	Themes      []Theme
	Collections []RouteCollection
	Trending    []TrendingRouteHighlight
	Picks       []CommunityPick
	GeneratedAt time.Time
}

// Tag is a free-form descriptor tag with a localized label.
type Tag struct {
	ID    string
	Label LocalizationMap
}

// Badge is an achievement/recognition descriptor.
type Badge struct {
	ID    string
	Label LocalizationMap
	Icon  IconIdentifier
}

// SafetyToggle is a single safety preference switch descriptor.
type SafetyToggle struct {
	ID    string
	Label LocalizationMap
}

// SafetyPreset is a named bundle of safety toggle IDs.
type SafetyPreset struct {
	ID         string
	Label      LocalizationMap
	ToggleIDs  []string
}

// InterestTheme is a descriptor-level interest theme (the selectable unit
// referenced by UserPreferences.InterestThemeIDs).
type InterestTheme struct {
	ID    string
	Label LocalizationMap
	Icon  IconIdentifier
}

// DescriptorSnapshot is the deterministic assembly served by
// GET /api/v1/catalogue/descriptors (spec §3).
type DescriptorSnapshot struct {
	Tags           []Tag
	Badges         []Badge
	SafetyToggles  []SafetyToggle
	SafetyPresets  []SafetyPreset
	InterestThemes []InterestTheme
	GeneratedAt    time.Time
}
