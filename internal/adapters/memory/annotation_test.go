package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

func TestAnnotationStore_RouteExists(t *testing.T) {
	routeID := uuid.New()
	store := NewAnnotationStore([]uuid.UUID{routeID})
	ctx := context.Background()

	exists, err := store.RouteExists(ctx, routeID)
	if err != nil || !exists {
		t.Fatalf("expected seeded route to exist, got exists=%v err=%v", exists, err)
	}

	unknown := uuid.New()
	exists, err = store.RouteExists(ctx, unknown)
	if err != nil || exists {
		t.Fatalf("expected unknown route to not exist, got exists=%v err=%v", exists, err)
	}

	store.RegisterRoute(unknown)
	exists, _ = store.RouteExists(ctx, unknown)
	if !exists {
		t.Fatal("expected registered route to now exist")
	}
}

func TestAnnotationStore_UpsertNote_TracksHistory(t *testing.T) {
	routeID := uuid.New()
	userID := uuid.New()
	noteID := uuid.New()
	store := NewAnnotationStore([]uuid.UUID{routeID})
	ctx := context.Background()

	note := domain.RouteNote{ID: noteID, RouteID: routeID, UserID: userID, Body: "first"}
	created, err := store.UpsertNote(ctx, note, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.History) != 0 {
		t.Fatalf("expected no history on creation, got %d entries", len(created.History))
	}

	rev := created.Revision
	note.Body = "second"
	updated, err := store.UpsertNote(ctx, note, &rev)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(updated.History))
	}
	if updated.History[0].OldBody != "first" || updated.History[0].NewBody != "second" {
		t.Fatalf("unexpected history entry: %+v", updated.History[0])
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatal("expected CreatedAt to be preserved across updates")
	}
}

func TestAnnotationStore_UpsertProgress(t *testing.T) {
	routeID := uuid.New()
	userID := uuid.New()
	store := NewAnnotationStore([]uuid.UUID{routeID})
	ctx := context.Background()

	p, err := store.UpsertProgress(ctx, domain.RouteProgress{RouteID: routeID, UserID: userID, VisitedStopIDs: []string{"stop-1"}}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", p.Revision)
	}

	got, err := store.GetProgress(ctx, routeID, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.VisitedStopIDs) != 1 || got.VisitedStopIDs[0] != "stop-1" {
		t.Fatalf("unexpected progress: %+v", got)
	}
}
