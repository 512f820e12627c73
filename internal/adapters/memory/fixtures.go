package memory

import (
	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// DefaultUsers returns the fixed user set the in-memory startup mode boots
// with (spec §9: fixture mode has no self-registration flow). Password is
// "waypoint" for every seeded account, bcrypt-hashed at app startup by the
// composition root so the cost factor stays configurable in one place.
func DefaultUsers() []domain.User {
	return []domain.User{
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Username: "demo", DisplayName: "Demo Walker"},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Username: "curator", DisplayName: "Route Curator"},
	}
}

// DefaultExploreCatalogue returns a small, deterministic explore snapshot
// for fixture-mode demos (spec §3 ExploreCatalogueSnapshot).
func DefaultExploreCatalogue() domain.ExploreCatalogueSnapshot {
	return domain.ExploreCatalogueSnapshot{
		Summaries: []domain.RouteSummary{
			{ID: "route-riverside-loop", Title: domain.LocalizationMap{"en": "Riverside Loop"}, Icon: "route:loop", DistanceMeters: 4200, CategoryID: "waterfront"},
			{ID: "route-old-town", Title: domain.LocalizationMap{"en": "Old Town Ramble"}, Icon: "route:historic", DistanceMeters: 2600, CategoryID: "historic"},
		},
		Categories: []domain.RouteCategory{
			{ID: "waterfront", Title: domain.LocalizationMap{"en": "Waterfront"}, Icon: "category:water"},
			{ID: "historic", Title: domain.LocalizationMap{"en": "Historic"}, Icon: "category:landmark"},
		},
		Themes: []domain.Theme{
			{ID: "theme-scenic", Title: domain.LocalizationMap{"en": "Scenic Views"}, RouteIDs: []string{"route-riverside-loop"}},
		},
		Collections: []domain.RouteCollection{
			{ID: "collection-weekend", Title: domain.LocalizationMap{"en": "Weekend Picks"}, RouteIDs: []string{"route-riverside-loop", "route-old-town"}},
		},
		Trending: []domain.TrendingRouteHighlight{
			{RouteID: "route-riverside-loop", Reason: domain.LocalizationMap{"en": "Most walked this week"}},
		},
		Picks: []domain.CommunityPick{
			{RouteID: "route-old-town", CuratorID: "00000000-0000-0000-0000-000000000002", Note: domain.LocalizationMap{"en": "Great for a slow afternoon"}},
		},
	}
}

// DefaultDescriptors returns a small, deterministic descriptor snapshot for
// fixture-mode demos (spec §3 DescriptorSnapshot).
func DefaultDescriptors() domain.DescriptorSnapshot {
	return domain.DescriptorSnapshot{
		Tags: []domain.Tag{
			{ID: "tag-dog-friendly", Label: domain.LocalizationMap{"en": "Dog friendly"}},
			{ID: "tag-stroller-friendly", Label: domain.LocalizationMap{"en": "Stroller friendly"}},
		},
		Badges: []domain.Badge{
			{ID: "badge-early-bird", Label: domain.LocalizationMap{"en": "Early Bird"}, Icon: "badge:sunrise"},
		},
		SafetyToggles: []domain.SafetyToggle{
			{ID: "safety-well-lit", Label: domain.LocalizationMap{"en": "Prefer well-lit paths"}},
			{ID: "safety-avoid-stairs", Label: domain.LocalizationMap{"en": "Avoid stairs"}},
		},
		SafetyPresets: []domain.SafetyPreset{
			{ID: "preset-night-walk", Label: domain.LocalizationMap{"en": "Night Walk"}, ToggleIDs: []string{"safety-well-lit"}},
		},
		InterestThemes: []domain.InterestTheme{
			{ID: "theme-scenic", Label: domain.LocalizationMap{"en": "Scenic Views"}, Icon: "theme:mountain"},
			{ID: "theme-historic", Label: domain.LocalizationMap{"en": "Historic Sites"}, Icon: "theme:landmark"},
		},
	}
}
