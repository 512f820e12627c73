package memory

import (
	"context"

	"github.com/wisbric/waypoint/internal/domain"
)

// CatalogueStore implements ports.CatalogueRepository over a fixed,
// curator-supplied snapshot (spec §3 ExploreCatalogueSnapshot is assembled
// content, not user-generated — fixture mode seeds it statically).
type CatalogueStore struct {
	mu
	snapshot domain.ExploreCatalogueSnapshot
	now      clock
}

func NewCatalogueStore(snapshot domain.ExploreCatalogueSnapshot) *CatalogueStore {
	return &CatalogueStore{snapshot: snapshot, now: realClock}
}

func (s *CatalogueStore) ExploreSnapshot(_ context.Context) (domain.ExploreCatalogueSnapshot, error) {
	s.Lock()
	defer s.Unlock()
	snap := s.snapshot
	snap.GeneratedAt = s.now()
	return snap, nil
}

// DescriptorStore implements ports.DescriptorRepository over a fixed
// descriptor snapshot.
type DescriptorStore struct {
	mu
	snapshot domain.DescriptorSnapshot
	now      clock
}

func NewDescriptorStore(snapshot domain.DescriptorSnapshot) *DescriptorStore {
	return &DescriptorStore{snapshot: snapshot, now: realClock}
}

func (s *DescriptorStore) DescriptorSnapshot(_ context.Context) (domain.DescriptorSnapshot, error) {
	s.Lock()
	defer s.Unlock()
	snap := s.snapshot
	snap.GeneratedAt = s.now()
	return snap, nil
}
