package annotation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
)

func newTestService(knownRoutes ...uuid.UUID) *Service {
	idem := idempotency.NewEngine(memory.NewIdempotencyStore(), nil)
	return NewService(memory.NewAnnotationStore(knownRoutes), idem, nil)
}

func TestUpsertNote_MissingRouteIsNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.UpsertNote(context.Background(), UpsertNoteInput{
		RouteID:        uuid.New(),
		UserID:         uuid.New(),
		NoteID:         uuid.New(),
		IdempotencyKey: uuid.New(),
		Body:           "nice view",
	})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpsertNote_TracksHistoryOnBodyChange(t *testing.T) {
	routeID := uuid.New()
	svc := newTestService(routeID)
	userID := uuid.New()
	noteID := uuid.New()
	ctx := context.Background()

	first, err := svc.UpsertNote(ctx, UpsertNoteInput{RouteID: routeID, UserID: userID, NoteID: noteID, IdempotencyKey: uuid.New(), Body: "v1"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rev := first.Revision
	second, err := svc.UpsertNote(ctx, UpsertNoteInput{RouteID: routeID, UserID: userID, NoteID: noteID, IdempotencyKey: uuid.New(), Body: "v2", ExpectedRevision: &rev})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(second.History) != 1 || second.History[0].OldBody != "v1" || second.History[0].NewBody != "v2" {
		t.Fatalf("expected one history entry v1->v2, got %+v", second.History)
	}
}

func TestUpsertProgress_DuplicateStopRejected(t *testing.T) {
	routeID := uuid.New()
	svc := newTestService(routeID)
	_, err := svc.UpsertProgress(context.Background(), UpsertProgressInput{
		RouteID:        routeID,
		UserID:         uuid.New(),
		IdempotencyKey: uuid.New(),
		VisitedStopIDs: []string{"a", "a"},
	})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindInvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}
