package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// UnitSystem is the closed enum of measurement systems a user may prefer.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// Valid reports whether u is one of the closed UnitSystem values.
func (u UnitSystem) Valid() bool {
	return u == UnitMetric || u == UnitImperial
}

// MutationType is the closed enum distinguishing idempotency scopes across
// endpoints (spec §3 MutationType, §4.2).
type MutationType string

const (
	MutationRoutes      MutationType = "routes"
	MutationNotes       MutationType = "notes"
	MutationProgress    MutationType = "progress"
	MutationPreferences MutationType = "preferences"
	MutationBundles     MutationType = "bundles"
)

// Valid reports whether m is one of the closed MutationType values.
func (m MutationType) Valid() bool {
	switch m {
	case MutationRoutes, MutationNotes, MutationProgress, MutationPreferences, MutationBundles:
		return true
	}
	return false
}

// BundleStatus is the closed lifecycle enum for an OfflineBundle.
type BundleStatus string

const (
	BundlePending  BundleStatus = "pending"
	BundleBuilding BundleStatus = "building"
	BundleReady    BundleStatus = "ready"
	BundleFailed   BundleStatus = "failed"
)

// BoundingBox is a validated WGS84 bounding box (spec §3 OfflineBundle,
// EnrichmentProvenanceRecord).
type BoundingBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// Validate enforces minLng<=maxLng, minLat<=maxLat, and valid WGS84 ranges.
func (b BoundingBox) Validate() error {
	if b.MinLng < -180 || b.MinLng > 180 || b.MaxLng < -180 || b.MaxLng > 180 {
		return InvalidRequest("longitude must be within [-180, 180]")
	}
	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return InvalidRequest("latitude must be within [-90, 90]")
	}
	if b.MinLng > b.MaxLng {
		return InvalidRequest("minLng must be <= maxLng")
	}
	if b.MinLat > b.MaxLat {
		return InvalidRequest("minLat must be <= maxLat")
	}
	return nil
}

// ZoomRange is a validated map zoom range (spec §3 OfflineBundle).
type ZoomRange struct {
	MinZoom int
	MaxZoom int
}

// Validate enforces minZoom<=maxZoom, each within [0,22].
func (z ZoomRange) Validate() error {
	if z.MinZoom < 0 || z.MinZoom > 22 || z.MaxZoom < 0 || z.MaxZoom > 22 {
		return InvalidRequest("zoom must be within [0, 22]")
	}
	if z.MinZoom > z.MaxZoom {
		return InvalidRequest("minZoom must be <= maxZoom")
	}
	return nil
}

// Progress is a validated build-progress fraction in [0.0, 1.0].
type Progress float64

// Validate enforces the [0.0, 1.0] bound.
func (p Progress) Validate() error {
	if p < 0.0 || p > 1.0 {
		return InvalidRequest("progress must be within [0.0, 1.0]")
	}
	return nil
}

// LocalizationMap is a mapping from BCP-47-shaped locale tag to localized
// string. Must contain at least one entry; all values non-empty.
type LocalizationMap map[string]string

var localeTagRe = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,8})*$`)

// Validate enforces the non-empty, BCP-47-shaped invariants.
func (m LocalizationMap) Validate() error {
	if len(m) == 0 {
		return InvalidRequest("localization map must contain at least one entry")
	}
	for tag, value := range m {
		if !localeTagRe.MatchString(tag) {
			return InvalidRequest("invalid locale tag %q", tag)
		}
		if strings.TrimSpace(value) == "" {
			return InvalidRequest("localized value for %q must not be empty", tag)
		}
	}
	return nil
}

// IconIdentifier is a semantic key of the form "category:name" (two
// non-empty segments, restricted alphabet).
type IconIdentifier string

var iconSegmentRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// Validate enforces the "category:name" shape.
func (i IconIdentifier) Validate() error {
	parts := strings.SplitN(string(i), ":", 2)
	if len(parts) != 2 {
		return InvalidRequest("icon identifier %q must have the form category:name", i)
	}
	category, name := parts[0], parts[1]
	if category == "" || name == "" {
		return InvalidRequest("icon identifier %q must have two non-empty segments", i)
	}
	if !iconSegmentRe.MatchString(category) || !iconSegmentRe.MatchString(name) {
		return InvalidRequest("icon identifier %q uses an unsupported character set", i)
	}
	return nil
}

// String returns the raw identifier.
func (i IconIdentifier) String() string { return string(i) }

// NonEmptyString validates that s is non-empty after trimming.
func NonEmptyString(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return InvalidRequest("%s must not be empty", field)
	}
	return nil
}

// NonNegative validates that a numeric field is >= 0; used for WalkSession
// stats payload fields.
func NonNegative(field string, v float64) error {
	if v < 0 {
		return InvalidRequest("%s must be non-negative", field)
	}
	return nil
}

// uniqueStrings returns ids unchanged, or an InvalidRequest error naming the
// first duplicate; used for RouteProgress visitedStopIds and WalkSession
// highlightedPoiIds (no duplicates invariant). It does not deduplicate.
func uniqueStrings(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return nil, InvalidRequest("duplicate id %q", id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// ValidateUniqueIDs enforces the no-duplicates invariant, returning a
// domain error describing the field if a duplicate is found.
func ValidateUniqueIDs(field string, ids []string) error {
	_, err := uniqueStrings(ids)
	if err != nil {
		return InvalidRequest("%s: %v", field, err)
	}
	return nil
}

// FormatBCP47Hint returns a short hint describing the expected locale tag
// shape. Nothing in this module calls it.
func FormatBCP47Hint() string {
	return fmt.Sprintf("expected a BCP-47-shaped tag")
}
