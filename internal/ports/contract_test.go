package ports_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/adapters/postgres"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
)

// Compile-time parity checks: every port is implemented by both adapters,
// so the composition root can swap one for the other without the driving
// services noticing (spec §4.8, §9 "Startup-mode tests must prove contract
// parity"). These are the "logic-only stub of the postgres adapter" half of
// that parity check — postgres.*Store methods are never invoked here, so no
// live database is required; internal/adapters/postgres/postgres_test.go
// covers that adapter's pure helpers separately.
var (
	_ ports.UserRepository                 = (*memory.UserStore)(nil)
	_ ports.UserRepository                 = (*postgres.UserStore)(nil)
	_ ports.PreferencesRepository          = (*memory.PreferencesStore)(nil)
	_ ports.PreferencesRepository          = (*postgres.PreferencesStore)(nil)
	_ ports.AnnotationRepository           = (*memory.AnnotationStore)(nil)
	_ ports.AnnotationRepository           = (*postgres.AnnotationStore)(nil)
	_ ports.IdempotencyRepository          = (*memory.IdempotencyStore)(nil)
	_ ports.IdempotencyRepository          = (*postgres.IdempotencyStore)(nil)
	_ ports.OfflineBundleRepository        = (*memory.OfflineBundleStore)(nil)
	_ ports.OfflineBundleRepository        = (*postgres.OfflineBundleStore)(nil)
	_ ports.WalkSessionRepository          = (*memory.WalkSessionStore)(nil)
	_ ports.WalkSessionRepository          = (*postgres.WalkSessionStore)(nil)
	_ ports.EnrichmentProvenanceRepository = (*memory.EnrichmentProvenanceStore)(nil)
	_ ports.EnrichmentProvenanceRepository = (*postgres.EnrichmentProvenanceStore)(nil)
	_ ports.POIRepository                  = (*memory.POIStore)(nil)
	_ ports.POIRepository                  = (*postgres.POIStore)(nil)
	_ ports.RouteRepository                = (*memory.RouteStore)(nil)
	_ ports.RouteRepository                = (*postgres.RouteStore)(nil)
	_ ports.CatalogueRepository            = (*memory.CatalogueStore)(nil)
	_ ports.CatalogueRepository            = (*postgres.CatalogueStore)(nil)
	_ ports.DescriptorRepository           = (*memory.DescriptorStore)(nil)
	_ ports.DescriptorRepository           = (*postgres.DescriptorStore)(nil)
	_ ports.SchemaRepository               = (*memory.SchemaStore)(nil)
	_ ports.SchemaRepository               = (*postgres.SchemaStore)(nil)
)

// The behavioural assertions below run purely against the ports.* interface
// types, backed by the memory adapters (the only implementation that can run
// outside a live database). They document the contract every implementation
// — including the postgres one — must uphold.

func TestPreferencesRepository_RevisionProtocol(t *testing.T) {
	var repo ports.PreferencesRepository = memory.NewPreferencesStore()
	ctx := context.Background()
	userID := uuid.New()

	created, err := repo.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitMetric}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Revision != 1 {
		t.Fatalf("expected revision 1 on create, got %d", created.Revision)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Revision != 1 {
		t.Fatalf("expected stored revision 1, got %d", got.Revision)
	}

	rev := created.Revision
	updated, err := repo.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitImperial}, &rev)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Revision != 2 {
		t.Fatalf("expected revision 2 after update, got %d", updated.Revision)
	}

	stale := uint32(1)
	if _, err := repo.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitMetric}, &stale); err == nil {
		t.Fatal("expected stale revision to be rejected")
	} else if pe, ok := err.(*domain.PortError); !ok || pe.Kind != domain.PortRevision {
		t.Fatalf("expected PortRevision, got %v", err)
	}
}

func TestAnnotationRepository_NoteRevisionProtocol(t *testing.T) {
	routeID := uuid.New()
	var repo ports.AnnotationRepository = memory.NewAnnotationStore([]uuid.UUID{routeID})
	ctx := context.Background()
	userID := uuid.New()
	noteID := uuid.New()

	note := domain.RouteNote{ID: noteID, RouteID: routeID, UserID: userID, Body: "nice bench here"}
	created, err := repo.UpsertNote(ctx, note, nil)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if created.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", created.Revision)
	}

	rev := created.Revision
	note.Body = "nice bench here, shaded too"
	updated, err := repo.UpsertNote(ctx, note, &rev)
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Revision != 2 {
		t.Fatalf("expected revision 2, got %d", updated.Revision)
	}
	if len(updated.History) != 1 {
		t.Fatalf("expected one history entry after edit, got %d", len(updated.History))
	}

	notes, err := repo.ListNotes(ctx, routeID, userID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
}

func TestAnnotationRepository_RouteExists(t *testing.T) {
	routeID := uuid.New()
	var repo ports.AnnotationRepository = memory.NewAnnotationStore([]uuid.UUID{routeID})
	ctx := context.Background()

	exists, err := repo.RouteExists(ctx, routeID)
	if err != nil {
		t.Fatalf("route exists: %v", err)
	}
	if !exists {
		t.Fatal("expected known route to exist")
	}

	exists, err = repo.RouteExists(ctx, uuid.New())
	if err != nil {
		t.Fatalf("route exists (unknown): %v", err)
	}
	if exists {
		t.Fatal("expected unknown route to not exist")
	}
}

func TestIdempotencyRepository_InsertGetDeleteOlderThan(t *testing.T) {
	var repo ports.IdempotencyRepository = memory.NewIdempotencyStore()
	ctx := context.Background()
	key := uuid.New()
	userID := uuid.New()

	if _, err := repo.Get(ctx, key, userID, domain.MutationNotes); err == nil {
		t.Fatal("expected not-found before insert")
	}

	old := domain.IdempotencyRecord{
		Key:              key,
		UserID:           userID,
		MutationType:     domain.MutationNotes,
		ResponseSnapshot: []byte(`{"ok":true}`),
		CreatedAt:        time.Now().UTC().Add(-48 * time.Hour),
	}
	if err := repo.Insert(ctx, old); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(ctx, key, userID, domain.MutationNotes)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.ResponseSnapshot) != `{"ok":true}` {
		t.Fatalf("unexpected snapshot: %s", got.ResponseSnapshot)
	}

	n, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted record, got %d", n)
	}

	if _, err := repo.Get(ctx, key, userID, domain.MutationNotes); err == nil {
		t.Fatal("expected record to be gone after cleanup")
	}
}

func TestOfflineBundleRepository_CreateListGetDelete(t *testing.T) {
	var repo ports.OfflineBundleRepository = memory.NewOfflineBundleStore()
	ctx := context.Background()
	userID := uuid.New()

	bundle := domain.OfflineBundle{
		ID:       uuid.New(),
		UserID:   userID,
		DeviceID: "device-1",
		Bounds:   domain.BoundingBox{MinLng: -1, MinLat: -1, MaxLng: 1, MaxLat: 1},
		Zoom:     domain.ZoomRange{MinZoom: 10, MaxZoom: 16},
		Status:   domain.BundlePending,
	}
	created, err := repo.Create(ctx, bundle)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.List(ctx, userID, "device-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(list))
	}

	got, err := repo.Get(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, got.ID)
	}

	if err := repo.Delete(ctx, userID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, userID, created.ID); err == nil {
		t.Fatal("expected bundle to be gone after delete")
	}
}

func TestWalkSessionRepository_CreateGet(t *testing.T) {
	var repo ports.WalkSessionRepository = memory.NewWalkSessionStore()
	ctx := context.Background()
	userID := uuid.New()

	session := domain.WalkSession{
		ID:       uuid.New(),
		UserID:   userID,
		RouteID:  uuid.New(),
		StartedAt: time.Now().UTC(),
		Stats:    domain.WalkSessionStats{DistanceMeters: 1200},
	}
	created, err := repo.Create(ctx, session)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stats.DistanceMeters != 1200 {
		t.Fatalf("expected stats to round-trip, got %+v", got.Stats)
	}

	if _, err := repo.Get(ctx, uuid.New(), created.ID); err == nil {
		t.Fatal("expected not-found for a different owner")
	}
}

func TestEnrichmentProvenanceRepository_ListRecentPagination(t *testing.T) {
	var repo ports.EnrichmentProvenanceRepository = memory.NewEnrichmentProvenanceStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		rec := domain.EnrichmentProvenanceRecord{
			ID:         uuid.New(),
			ImportedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	page, err := repo.ListRecent(ctx, 2, nil)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(page) != 3 {
		// limit+1 rows returned so the caller can detect more pages exist.
		t.Fatalf("expected 3 rows (limit+1 signal), got %d", len(page))
	}
	if !page[0].ImportedAt.After(page[1].ImportedAt) {
		t.Fatal("expected descending imported_at order")
	}
}
