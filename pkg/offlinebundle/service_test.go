package offlinebundle

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
)

func newTestService() *Service {
	idem := idempotency.NewEngine(memory.NewIdempotencyStore(), nil)
	return NewService(memory.NewOfflineBundleStore(), idem, nil)
}

func validBounds() domain.BoundingBox {
	return domain.BoundingBox{MinLng: 5, MinLat: 5, MaxLng: 10, MaxLat: 10}
}

func TestCreate_InvertedBoundsRejected(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{
		UserID:         uuid.New(),
		IdempotencyKey: uuid.New(),
		ID:             uuid.New(),
		DeviceID:       "device-1",
		Bounds:         domain.BoundingBox{MinLng: 10, MinLat: 5, MaxLng: 5, MaxLat: 10},
		Zoom:           domain.ZoomRange{MinZoom: 0, MaxZoom: 10},
	})
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindInvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestCreate_StableIDPreservedOnReplay(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	id := uuid.New()
	in := CreateInput{UserID: userID, IdempotencyKey: uuid.New(), ID: id, DeviceID: "device-1", Bounds: validBounds(), Zoom: domain.ZoomRange{MinZoom: 0, MaxZoom: 10}}
	ctx := context.Background()

	first, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if second.ID != first.ID || second.ID != id {
		t.Fatalf("expected stable id %s, got %s then %s", id, first.ID, second.ID)
	}
}

func TestDelete_RemovesBundle(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	id := uuid.New()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{UserID: userID, IdempotencyKey: uuid.New(), ID: id, DeviceID: "d", Bounds: validBounds(), Zoom: domain.ZoomRange{MinZoom: 0, MaxZoom: 5}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, DeleteInput{UserID: userID, IdempotencyKey: uuid.New(), BundleID: id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	bundles, err := svc.List(ctx, userID, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bundles) != 0 {
		t.Fatalf("expected no bundles after delete, got %d", len(bundles))
	}
}
