package walksession

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
)

func TestCreate_EndedBeforeStartedRejected(t *testing.T) {
	svc := NewService(memory.NewWalkSessionStore(), nil)
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(-time.Minute)
	_, err := svc.Create(context.Background(), CreateInput{
		UserID:    uuid.New(),
		ID:        uuid.New(),
		RouteID:   uuid.New(),
		StartedAt: started,
		EndedAt:   &ended,
	})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindInvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestCreate_StableIDReplayReturnsExisting(t *testing.T) {
	svc := NewService(memory.NewWalkSessionStore(), nil)
	userID := uuid.New()
	id := uuid.New()
	ctx := context.Background()

	in := CreateInput{UserID: userID, ID: id, RouteID: uuid.New(), StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	first, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected stable id, got %s vs %s", first.ID, second.ID)
	}
}
