package routeplan

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
)

func newTestService() *Service {
	idem := idempotency.NewEngine(memory.NewIdempotencyStore(), nil)
	return NewService(memory.NewRouteStore(nil), idem, nil)
}

func TestSubmit_FreshKeyYieldsAccepted(t *testing.T) {
	svc := newTestService()
	result, err := svc.Submit(context.Background(), SubmitInput{
		UserID:         uuid.New(),
		IdempotencyKey: uuid.New(),
		Payload:        json.RawMessage(`{"destination":"X"}`),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", result.Status)
	}
}

func TestSubmit_ReplayedKeySamePayloadYieldsSameRequestID(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	key := uuid.New()
	payload := json.RawMessage(`{"destination":"X"}`)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitInput{UserID: userID, IdempotencyKey: key, Payload: payload})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := svc.Submit(ctx, SubmitInput{UserID: userID, IdempotencyKey: key, Payload: payload})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.RequestID != first.RequestID {
		t.Fatalf("expected same requestId on replay, got %s vs %s", second.RequestID, first.RequestID)
	}
	if second.Status != StatusReplayed {
		t.Fatalf("expected replayed status, got %s", second.Status)
	}
}

func TestSubmit_SameKeyDifferentPayloadConflicts(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	key := uuid.New()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, SubmitInput{UserID: userID, IdempotencyKey: key, Payload: json.RawMessage(`{"destination":"X"}`)}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(ctx, SubmitInput{UserID: userID, IdempotencyKey: key, Payload: json.RawMessage(`{"destination":"Y"}`)})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}
