package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// OfflineBundleStore implements ports.OfflineBundleRepository over the
// offline_bundles table.
type OfflineBundleStore struct {
	dbtx db.DBTX
}

func NewOfflineBundleStore(dbtx db.DBTX) *OfflineBundleStore {
	return &OfflineBundleStore{dbtx: dbtx}
}

func scanBundleRow(row interface{ Scan(dest ...any) error }) (domain.OfflineBundle, error) {
	var b domain.OfflineBundle
	err := row.Scan(
		&b.ID, &b.UserID, &b.DeviceID,
		&b.Bounds.MinLng, &b.Bounds.MinLat, &b.Bounds.MaxLng, &b.Bounds.MaxLat,
		&b.Zoom.MinZoom, &b.Zoom.MaxZoom,
		&b.Status, &b.Progress, &b.EstimatedSize, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

const bundleColumns = `
	id, user_id, device_id,
	min_lng, min_lat, max_lng, max_lat,
	min_zoom, max_zoom,
	status, progress, estimated_size, created_at, updated_at
`

func (s *OfflineBundleStore) List(ctx context.Context, userID uuid.UUID, deviceID string) ([]domain.OfflineBundle, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT `+bundleColumns+`
		FROM offline_bundles
		WHERE user_id = $1 AND ($2 = '' OR device_id = $2)
		ORDER BY created_at ASC, id ASC
	`, userID, deviceID)
	if err != nil {
		return nil, mapError(err, "")
	}
	defer rows.Close()

	var bundles []domain.OfflineBundle
	for rows.Next() {
		b, err := scanBundleRow(rows)
		if err != nil {
			return nil, mapError(err, "")
		}
		bundles = append(bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "")
	}
	return bundles, nil
}

func (s *OfflineBundleStore) Get(ctx context.Context, userID, bundleID uuid.UUID) (domain.OfflineBundle, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT `+bundleColumns+`
		FROM offline_bundles
		WHERE user_id = $1 AND id = $2
	`, userID, bundleID)
	b, err := scanBundleRow(row)
	if err != nil {
		return domain.OfflineBundle{}, mapError(err, "offline bundle not found")
	}
	return b, nil
}

// Create preserves the caller-supplied stable ID; ON CONFLICT DO NOTHING
// plus a re-read implements the "second Create with same id is a no-op
// returning the existing row" contract (ports.OfflineBundleRepository).
func (s *OfflineBundleStore) Create(ctx context.Context, bundle domain.OfflineBundle) (domain.OfflineBundle, error) {
	now := time.Now().UTC()
	bundle.CreatedAt = now
	bundle.UpdatedAt = now

	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO offline_bundles (`+bundleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO NOTHING
	`, bundle.ID, bundle.UserID, bundle.DeviceID,
		bundle.Bounds.MinLng, bundle.Bounds.MinLat, bundle.Bounds.MaxLng, bundle.Bounds.MaxLat,
		bundle.Zoom.MinZoom, bundle.Zoom.MaxZoom,
		bundle.Status, bundle.Progress, bundle.EstimatedSize, bundle.CreatedAt, bundle.UpdatedAt)
	if err != nil {
		return domain.OfflineBundle{}, mapError(err, "")
	}
	return s.Get(ctx, bundle.UserID, bundle.ID)
}

func (s *OfflineBundleStore) Delete(ctx context.Context, userID, bundleID uuid.UUID) error {
	tag, err := s.dbtx.Exec(ctx, `
		DELETE FROM offline_bundles WHERE user_id = $1 AND id = $2
	`, userID, bundleID)
	if err != nil {
		return mapError(err, "")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewPortError(domain.PortNotFound, "offline bundle not found", nil)
	}
	return nil
}
