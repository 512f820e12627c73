// Package ports declares the driven-port interfaces (spec §4.2's
// "Driven ports (repositories)" component). Every port is implemented
// twice — once over Postgres (internal/adapters/postgres) and once as a
// deterministic in-memory fixture (internal/adapters/memory) — so the
// composition root can select DB-backed or fixture-backed behaviour
// without the driving services knowing which (spec §4.8, §9).
//
// Port methods return *domain.PortError on failure, never a raw storage
// error; driving services map that into the domain error taxonomy at the
// service boundary via domain.FromPortError.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// UserRepository resolves user identity and display attributes.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// GetByUsername backs POST /login (spec §6); returns domain.PortNotFound
	// if no user has that username.
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// PreferencesRepository persists per-user preferences with optimistic
// concurrency (spec §3 UserPreferences, §4.3).
type PreferencesRepository interface {
	// Get returns domain.PortNotFound if no preferences row exists yet.
	Get(ctx context.Context, userID uuid.UUID) (domain.UserPreferences, error)
	// Upsert creates the row at revision 1 if absent, or updates it to
	// prevRevision+1 if present. expectedRevision, when non-nil, must equal
	// the current stored revision (0 meaning "does not yet exist") or the
	// adapter returns domain.NewPortRevisionMismatch.
	Upsert(ctx context.Context, prefs domain.UserPreferences, expectedRevision *uint32) (domain.UserPreferences, error)
}

// AnnotationRepository persists route notes and per-route progress.
type AnnotationRepository interface {
	GetNote(ctx context.Context, routeID, userID, noteID uuid.UUID) (domain.RouteNote, error)
	ListNotes(ctx context.Context, routeID, userID uuid.UUID) ([]domain.RouteNote, error)
	// UpsertNote creates the note at revision 1 if id is unseen for
	// (userId, routeId), else updates it under the revision protocol.
	UpsertNote(ctx context.Context, note domain.RouteNote, expectedRevision *uint32) (domain.RouteNote, error)

	GetProgress(ctx context.Context, routeID, userID uuid.UUID) (domain.RouteProgress, error)
	UpsertProgress(ctx context.Context, progress domain.RouteProgress, expectedRevision *uint32) (domain.RouteProgress, error)

	// RouteExists is consulted by note upsert so a missing route maps to
	// domain.NotFound (spec §4.4 "On missing route, return NotFound").
	RouteExists(ctx context.Context, routeID uuid.UUID) (bool, error)
}

// IdempotencyRepository is the sole driven port backing the idempotency
// engine (spec §4.2). Insert must be atomic against concurrent inserts
// sharing the same composite key; a collision is reported as
// domain.PortConflict and the caller re-reads via Get.
type IdempotencyRepository interface {
	Get(ctx context.Context, key, userID uuid.UUID, kind domain.MutationType) (domain.IdempotencyRecord, error)
	Insert(ctx context.Context, rec domain.IdempotencyRecord) error
	// DeleteOlderThan removes records whose CreatedAt is before cutoff,
	// implementing the periodic TTL cleanup in spec §4.2 step 5. It returns
	// the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OfflineBundleRepository persists client-synced offline map bundles.
type OfflineBundleRepository interface {
	List(ctx context.Context, userID uuid.UUID, deviceID string) ([]domain.OfflineBundle, error)
	Get(ctx context.Context, userID, bundleID uuid.UUID) (domain.OfflineBundle, error)
	// Create preserves the caller-supplied stable ID; a second Create call
	// with the same ID and owner is a no-op returning the existing row
	// (idempotency replay handles exact-duplicate detection upstream; this
	// guards direct adapter reuse).
	Create(ctx context.Context, bundle domain.OfflineBundle) (domain.OfflineBundle, error)
	Delete(ctx context.Context, userID, bundleID uuid.UUID) error
}

// WalkSessionRepository persists recorded walks.
type WalkSessionRepository interface {
	Create(ctx context.Context, session domain.WalkSession) (domain.WalkSession, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.WalkSession, error)
}

// EnrichmentProvenanceRepository is the append-only audit trail for
// enrichment imports (spec §3, §4.6 admin pagination).
type EnrichmentProvenanceRepository interface {
	Insert(ctx context.Context, rec domain.EnrichmentProvenanceRecord) error
	// ListRecent paginates ORDER BY imported_at DESC; before, when non-nil,
	// restricts to imported_at < *before (spec §4.6, §8 pagination law).
	// It fetches limit+1 rows so the caller can detect more pages.
	ListRecent(ctx context.Context, limit int, before *time.Time) ([]domain.EnrichmentProvenanceRecord, error)
}

// POIRepository upserts points of interest discovered by the enrichment
// worker (spec §4.5).
type POIRepository interface {
	UpsertBatch(ctx context.Context, pois []domain.POI) error
}

// RouteRepository persists generated route plans (spec §3 Route, §4.4
// route submission).
type RouteRepository interface {
	Create(ctx context.Context, route domain.Route) (domain.Route, error)
}

// CatalogueRepository assembles the explore-catalogue read model.
type CatalogueRepository interface {
	ExploreSnapshot(ctx context.Context) (domain.ExploreCatalogueSnapshot, error)
}

// DescriptorRepository assembles the descriptor read model (tags, badges,
// safety toggles/presets, interest themes).
type DescriptorRepository interface {
	DescriptorSnapshot(ctx context.Context) (domain.DescriptorSnapshot, error)
}

// SchemaRepository exposes a snapshot of the durable schema's identity
// (spec §3 "schema snapshot" driven port). Readiness checks do not use it,
// and the parity tests only check at compile time that both adapters
// implement it; nothing in the module calls SchemaVersion.
type SchemaRepository interface {
	SchemaVersion(ctx context.Context) (string, error)
}
