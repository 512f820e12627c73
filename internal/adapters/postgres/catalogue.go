package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// CatalogueStore implements ports.CatalogueRepository over a single-row
// jsonb read model (catalogue_snapshots), matching the curator-assembled,
// not user-generated nature of the explore catalogue (spec §3).
type CatalogueStore struct {
	dbtx db.DBTX
}

func NewCatalogueStore(dbtx db.DBTX) *CatalogueStore {
	return &CatalogueStore{dbtx: dbtx}
}

func (s *CatalogueStore) ExploreSnapshot(ctx context.Context) (domain.ExploreCatalogueSnapshot, error) {
	var payload []byte
	err := s.dbtx.QueryRow(ctx, `
		SELECT payload FROM catalogue_snapshots WHERE id = 'explore'
	`).Scan(&payload)
	if err != nil {
		return domain.ExploreCatalogueSnapshot{}, mapError(err, "explore catalogue not configured")
	}
	var snap domain.ExploreCatalogueSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.ExploreCatalogueSnapshot{}, domain.NewPortError(domain.PortSerialization, "explore catalogue payload malformed", err)
	}
	snap.GeneratedAt = time.Now().UTC()
	return snap, nil
}

// DescriptorStore implements ports.DescriptorRepository the same way.
type DescriptorStore struct {
	dbtx db.DBTX
}

func NewDescriptorStore(dbtx db.DBTX) *DescriptorStore {
	return &DescriptorStore{dbtx: dbtx}
}

func (s *DescriptorStore) DescriptorSnapshot(ctx context.Context) (domain.DescriptorSnapshot, error) {
	var payload []byte
	err := s.dbtx.QueryRow(ctx, `
		SELECT payload FROM catalogue_snapshots WHERE id = 'descriptors'
	`).Scan(&payload)
	if err != nil {
		return domain.DescriptorSnapshot{}, mapError(err, "descriptor catalogue not configured")
	}
	var snap domain.DescriptorSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.DescriptorSnapshot{}, domain.NewPortError(domain.PortSerialization, "descriptor catalogue payload malformed", err)
	}
	snap.GeneratedAt = time.Now().UTC()
	return snap, nil
}
