package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/domain"
)

func testBounds() domain.BoundingBox {
	return domain.BoundingBox{MinLng: 0, MinLat: 0, MaxLng: 1, MaxLat: 1}
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.QuotaPerWindow = 1000
	cfg.QuotaBurst = 1000
	cfg.RetryMaxElapsed = 50 * time.Millisecond
	cfg.BreakerMaxRequests = 10
	return cfg
}

func TestRun_SuccessPathUpsertsAndRecordsProvenance(t *testing.T) {
	pois := memory.NewPOIStore()
	provenance := memory.NewEnrichmentProvenanceStore()
	fetch := func(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error) {
		return []domain.POI{{ID: "poi-1", Name: domain.LocalizationMap{"en": "Fountain"}, Icon: "poi:fountain", Lat: 0.5, Lng: 0.5}}, nil
	}
	svc := NewService(pois, provenance, fetch, fastConfig(), nil)

	if err := svc.Run(context.Background(), "https://overpass.example/query", testBounds()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pois.All()) != 1 {
		t.Fatalf("expected 1 POI upserted, got %d", len(pois.All()))
	}
	records, err := provenance.ListRecent(context.Background(), 10, nil)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 provenance record, got %d (err=%v)", len(records), err)
	}
}

type failingProvenanceStore struct{}

func (failingProvenanceStore) Insert(context.Context, domain.EnrichmentProvenanceRecord) error {
	return domain.NewPortError(domain.PortQuery, "provenance insert failed", errors.New("disk full"))
}

func (failingProvenanceStore) ListRecent(context.Context, int, *time.Time) ([]domain.EnrichmentProvenanceRecord, error) {
	return nil, nil
}

func TestRun_ProvenanceFailureFailsJobEvenThoughPOIsPersisted(t *testing.T) {
	pois := memory.NewPOIStore()
	fetch := func(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error) {
		return []domain.POI{{ID: "poi-1", Name: domain.LocalizationMap{"en": "Fountain"}, Icon: "poi:fountain", Lat: 0.5, Lng: 0.5}}, nil
	}
	svc := NewService(pois, failingProvenanceStore{}, fetch, fastConfig(), nil)

	err := svc.Run(context.Background(), "https://overpass.example/query", testBounds())
	if err == nil {
		t.Fatal("expected job to fail when provenance insert fails")
	}
	if len(pois.All()) != 1 {
		t.Fatalf("expected POIs to remain upserted despite provenance failure, got %d", len(pois.All()))
	}
}

func TestRun_ClientErrorIsNotRetriedAndMapsToInvalidRequest(t *testing.T) {
	pois := memory.NewPOIStore()
	provenance := memory.NewEnrichmentProvenanceStore()
	attempts := 0
	fetch := func(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error) {
		attempts++
		return nil, &FetchError{Kind: FetchErrorClient, Err: errors.New("400 bad request")}
	}
	svc := NewService(pois, provenance, fetch, fastConfig(), nil)

	err := svc.Run(context.Background(), "https://overpass.example/query", testBounds())
	de, ok := domain.AsError(err)
	if !ok || de.Kind != domain.KindInvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a permanent client error, got %d", attempts)
	}
}
