package preferences

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
)

func newService() (*Service, *idempotency.Engine) {
	idem := idempotency.NewEngine(memoryIdemStore(), nil)
	svc := NewService(memory.NewPreferencesStore(), idem, nil)
	return svc, idem
}

func memoryIdemStore() *memory.IdempotencyStore {
	return memory.NewIdempotencyStore()
}

func TestUpdate_FirstCallCreatesAtRevisionOne(t *testing.T) {
	svc, _ := newService()
	userID := uuid.New()

	prefs, err := svc.Update(context.Background(), UpdateInput{
		UserID:           userID,
		IdempotencyKey:   uuid.New(),
		InterestThemeIDs: []string{"theme-scenic"},
		UnitSystem:       domain.UnitMetric,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if prefs.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", prefs.Revision)
	}
}

func TestUpdate_RevisionMismatchRejected(t *testing.T) {
	svc, _ := newService()
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Update(ctx, UpdateInput{UserID: userID, IdempotencyKey: uuid.New(), UnitSystem: domain.UnitMetric}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stale := uint32(99)
	_, err := svc.Update(ctx, UpdateInput{UserID: userID, IdempotencyKey: uuid.New(), UnitSystem: domain.UnitImperial, ExpectedRevision: &stale})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindRevisionMismatch {
		t.Fatalf("expected RevisionMismatch, got %v", err)
	}
}

func TestUpdate_SameIdempotencyKeyReplays(t *testing.T) {
	svc, _ := newService()
	userID := uuid.New()
	key := uuid.New()
	ctx := context.Background()

	in := UpdateInput{UserID: userID, IdempotencyKey: key, UnitSystem: domain.UnitMetric, InterestThemeIDs: []string{"a"}}
	first, err := svc.Update(ctx, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Update(ctx, in)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Revision != first.Revision {
		t.Fatalf("expected replay to return identical revision, got %d vs %d", second.Revision, first.Revision)
	}
}
