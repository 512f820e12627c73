package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal read-only attribute set the core needs (spec §3
// User). Lifecycle is owned outside the core.
type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName string
	PasswordHash string
}

// UserPreferences holds a user's interest themes, safety toggles, and
// measurement preference, with optimistic-concurrency revision (spec §3).
type UserPreferences struct {
	UserID           uuid.UUID
	InterestThemeIDs []string
	SafetyToggleIDs  []string
	UnitSystem       UnitSystem
	Revision         uint32
	UpdatedAt        time.Time
}

// Validate enforces the UnitSystem enum and monotonic-revision floor.
func (p UserPreferences) Validate() error {
	if !p.UnitSystem.Valid() {
		return InvalidRequest("unitSystem must be metric or imperial")
	}
	if p.Revision < 1 {
		return InvalidRequest("revision must be >= 1")
	}
	return nil
}

// RouteNote is a user-authored annotation on a route, optionally pinned to
// a POI (spec §3 RouteNote).
type RouteNote struct {
	ID        uuid.UUID
	RouteID   uuid.UUID
	POIID     *string
	UserID    uuid.UUID
	Body      string
	Revision  uint32
	CreatedAt time.Time
	UpdatedAt time.Time
	History   []NoteHistoryEntry
}

// NoteHistoryEntry is an additive audit record of a note's body changing
// (see SPEC_FULL.md §4 supplemented features).
type NoteHistoryEntry struct {
	OldBody   string
	NewBody   string
	ChangedBy uuid.UUID
	ChangedAt time.Time
}

// Validate enforces the non-empty body invariant.
func (n RouteNote) Validate() error {
	return NonEmptyString("body", n.Body)
}

// RouteProgress tracks which stops a user has visited on a route, keyed by
// (routeId, userId) (spec §3 RouteProgress).
type RouteProgress struct {
	RouteID        uuid.UUID
	UserID         uuid.UUID
	VisitedStopIDs []string
	Revision       uint32
	UpdatedAt      time.Time
}

// Validate enforces the no-duplicates invariant on VisitedStopIDs.
func (p RouteProgress) Validate() error {
	return ValidateUniqueIDs("visitedStopIds", p.VisitedStopIDs)
}

// OfflineBundle is a client-defined map tile/download region (spec §3).
type OfflineBundle struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	DeviceID      string
	Bounds        BoundingBox
	Zoom          ZoomRange
	Status        BundleStatus
	Progress      Progress
	EstimatedSize int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate enforces bounds ordering, zoom ordering, progress range, and
// non-negative estimated size.
func (b OfflineBundle) Validate() error {
	if err := b.Bounds.Validate(); err != nil {
		return err
	}
	if err := b.Zoom.Validate(); err != nil {
		return err
	}
	if err := b.Progress.Validate(); err != nil {
		return err
	}
	if b.EstimatedSize < 0 {
		return InvalidRequest("estimatedSize must be >= 0")
	}
	return nil
}

// WalkSessionStats holds non-negative distance/duration measurements for a
// recorded walk (spec §3 WalkSession "stats payload").
type WalkSessionStats struct {
	DistanceMeters    float64
	DurationSeconds   float64
	ElevationGainMeters float64
}

// Validate enforces the non-negative-fields invariant.
func (s WalkSessionStats) Validate() error {
	if err := NonNegative("distanceMeters", s.DistanceMeters); err != nil {
		return err
	}
	if err := NonNegative("durationSeconds", s.DurationSeconds); err != nil {
		return err
	}
	return NonNegative("elevationGainMeters", s.ElevationGainMeters)
}

// WalkSession records a completed (or in-progress) walk (spec §3).
type WalkSession struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	RouteID            uuid.UUID
	StartedAt          time.Time
	EndedAt            *time.Time
	Stats              WalkSessionStats
	HighlightedPOIIDs  []string
}

// Validate enforces EndedAt >= StartedAt, non-negative stats, and no
// duplicate highlighted POIs.
func (w WalkSession) Validate() error {
	if w.EndedAt != nil && w.EndedAt.Before(w.StartedAt) {
		return InvalidRequest("endedAt must be >= startedAt")
	}
	if err := w.Stats.Validate(); err != nil {
		return err
	}
	return ValidateUniqueIDs("highlightedPoiIds", w.HighlightedPOIIDs)
}

// IdempotencyRecord is the stored outcome of a previously executed mutation,
// keyed by (key, userId, mutationType) (spec §3, §4.2).
type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	MutationType    MutationType
	PayloadHash     [32]byte
	ResponseSnapshot []byte
	CreatedAt       time.Time
}

// EnrichmentProvenanceRecord is an append-only audit record of an
// enrichment import (spec §3).
type EnrichmentProvenanceRecord struct {
	ID         uuid.UUID
	SourceURL  string
	ImportedAt time.Time
	Bounds     BoundingBox
	CreatedAt  time.Time
}

// Validate enforces a non-empty source URL and valid, ordered bounds.
func (r EnrichmentProvenanceRecord) Validate() error {
	if err := NonEmptyString("sourceUrl", r.SourceURL); err != nil {
		return err
	}
	return r.Bounds.Validate()
}

// Route is an immutable (post-creation) generated route plan (spec §3).
type Route struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PlanJSON  []byte
	CreatedAt time.Time
}

// POI is a minimal point-of-interest record persisted by the enrichment
// worker (spec §4.5 "POIs are upserted").
type POI struct {
	ID       string
	Name     LocalizationMap
	Icon     IconIdentifier
	Lat      float64
	Lng      float64
	Category string
}
