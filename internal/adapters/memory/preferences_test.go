package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

func TestPreferencesStore_UpsertCreateThenUpdate(t *testing.T) {
	store := NewPreferencesStore()
	userID := uuid.New()
	ctx := context.Background()

	created, err := store.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitMetric}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", created.Revision)
	}

	expected := created.Revision
	updated, err := store.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitImperial}, &expected)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Revision != 2 {
		t.Fatalf("expected revision 2, got %d", updated.Revision)
	}
}

func TestPreferencesStore_UpsertMismatchRejected(t *testing.T) {
	store := NewPreferencesStore()
	userID := uuid.New()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitMetric}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	stale := uint32(99)
	_, err := store.Upsert(ctx, domain.UserPreferences{UserID: userID, UnitSystem: domain.UnitImperial}, &stale)
	pe, ok := err.(*domain.PortError)
	if !ok || pe.Kind != domain.PortRevision {
		t.Fatalf("expected PortRevision error, got %v", err)
	}
}

func TestPreferencesStore_GetNotFound(t *testing.T) {
	store := NewPreferencesStore()
	_, err := store.Get(context.Background(), uuid.New())
	pe, ok := err.(*domain.PortError)
	if !ok || pe.Kind != domain.PortNotFound {
		t.Fatalf("expected PortNotFound, got %v", err)
	}
}
