package memory

import (
	"context"
	"sort"
	"time"

	"github.com/wisbric/waypoint/internal/domain"
)

// EnrichmentProvenanceStore implements ports.EnrichmentProvenanceRepository.
type EnrichmentProvenanceStore struct {
	mu
	records []domain.EnrichmentProvenanceRecord
}

func NewEnrichmentProvenanceStore() *EnrichmentProvenanceStore {
	return &EnrichmentProvenanceStore{}
}

func (s *EnrichmentProvenanceStore) Insert(_ context.Context, rec domain.EnrichmentProvenanceRecord) error {
	s.Lock()
	defer s.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ListRecent returns up to limit+1 rows ordered by ImportedAt DESC,
// restricted to ImportedAt < *before when before is set, matching the
// postgres adapter's keyset-pagination contract exactly.
func (s *EnrichmentProvenanceStore) ListRecent(_ context.Context, limit int, before *time.Time) ([]domain.EnrichmentProvenanceRecord, error) {
	s.Lock()
	defer s.Unlock()

	filtered := make([]domain.EnrichmentProvenanceRecord, 0, len(s.records))
	for _, r := range s.records {
		if before != nil && !r.ImportedAt.Before(*before) {
			continue
		}
		filtered = append(filtered, r)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].ImportedAt.After(filtered[j].ImportedAt)
	})

	if limit+1 < len(filtered) {
		filtered = filtered[:limit+1]
	}
	return filtered, nil
}

// POIStore implements ports.POIRepository.
type POIStore struct {
	mu
	byID map[string]domain.POI
}

func NewPOIStore() *POIStore {
	return &POIStore{byID: make(map[string]domain.POI)}
}

func (s *POIStore) UpsertBatch(_ context.Context, pois []domain.POI) error {
	s.Lock()
	defer s.Unlock()
	for _, p := range pois {
		s.byID[p.ID] = p
	}
	return nil
}

// All returns every stored POI, in no defined order. Only tests call it.
func (s *POIStore) All() []domain.POI {
	s.Lock()
	defer s.Unlock()
	out := make([]domain.POI, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out
}
