package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// POIStore implements ports.POIRepository over the pois table.
type POIStore struct {
	dbtx db.DBTX
}

func NewPOIStore(dbtx db.DBTX) *POIStore {
	return &POIStore{dbtx: dbtx}
}

func (s *POIStore) UpsertBatch(ctx context.Context, pois []domain.POI) error {
	for _, p := range pois {
		_, err := s.dbtx.Exec(ctx, `
			INSERT INTO pois (id, name_localized, icon, lat, lng, category)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name_localized = EXCLUDED.name_localized,
				icon = EXCLUDED.icon,
				lat = EXCLUDED.lat,
				lng = EXCLUDED.lng,
				category = EXCLUDED.category
		`, p.ID, localizationJSON(p.Name), p.Icon, p.Lat, p.Lng, p.Category)
		if err != nil {
			return mapError(err, "")
		}
	}
	return nil
}

// EnrichmentProvenanceStore implements ports.EnrichmentProvenanceRepository
// over the overpass_enrichment_provenance table.
type EnrichmentProvenanceStore struct {
	dbtx db.DBTX
}

func NewEnrichmentProvenanceStore(dbtx db.DBTX) *EnrichmentProvenanceStore {
	return &EnrichmentProvenanceStore{dbtx: dbtx}
}

func (s *EnrichmentProvenanceStore) Insert(ctx context.Context, rec domain.EnrichmentProvenanceRecord) error {
	rec.CreatedAt = time.Now().UTC()
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO overpass_enrichment_provenance
			(id, source_url, imported_at, min_lng, min_lat, max_lng, max_lat, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.SourceURL, rec.ImportedAt, rec.Bounds.MinLng, rec.Bounds.MinLat, rec.Bounds.MaxLng, rec.Bounds.MaxLat, rec.CreatedAt)
	if err != nil {
		return mapError(err, "")
	}
	return nil
}

// ListRecent orders by imported_at DESC, the pagination cursor axis (spec
// §4.6, §8 pagination law), fetching limit+1 rows for the caller's
// has-more detection.
func (s *EnrichmentProvenanceStore) ListRecent(ctx context.Context, limit int, before *time.Time) ([]domain.EnrichmentProvenanceRecord, error) {
	var rows pgx.Rows
	var err error
	fetch := limit + 1

	if before != nil {
		rows, err = s.dbtx.Query(ctx, `
			SELECT id, source_url, imported_at, min_lng, min_lat, max_lng, max_lat, created_at
			FROM overpass_enrichment_provenance
			WHERE imported_at < $1
			ORDER BY imported_at DESC
			LIMIT $2
		`, *before, fetch)
	} else {
		rows, err = s.dbtx.Query(ctx, `
			SELECT id, source_url, imported_at, min_lng, min_lat, max_lng, max_lat, created_at
			FROM overpass_enrichment_provenance
			ORDER BY imported_at DESC
			LIMIT $1
		`, fetch)
	}
	if err != nil {
		return nil, mapError(err, "")
	}
	defer rows.Close()

	var records []domain.EnrichmentProvenanceRecord
	for rows.Next() {
		var r domain.EnrichmentProvenanceRecord
		if err := rows.Scan(&r.ID, &r.SourceURL, &r.ImportedAt, &r.Bounds.MinLng, &r.Bounds.MinLat, &r.Bounds.MaxLng, &r.Bounds.MaxLat, &r.CreatedAt); err != nil {
			return nil, mapError(err, "")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "")
	}
	return records, nil
}
