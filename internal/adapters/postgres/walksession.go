package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// WalkSessionStore implements ports.WalkSessionRepository over the
// walk_sessions table. Walk sessions are deliberately not idempotency-gated
// (spec §6); stable-ID Create is a no-op on a second call with the same ID.
type WalkSessionStore struct {
	dbtx db.DBTX
}

func NewWalkSessionStore(dbtx db.DBTX) *WalkSessionStore {
	return &WalkSessionStore{dbtx: dbtx}
}

func scanWalkSessionRow(row interface{ Scan(dest ...any) error }) (domain.WalkSession, error) {
	var w domain.WalkSession
	var highlightedCSV string
	err := row.Scan(
		&w.ID, &w.UserID, &w.RouteID, &w.StartedAt, &w.EndedAt,
		&w.Stats.DistanceMeters, &w.Stats.DurationSeconds, &w.Stats.ElevationGainMeters,
		&highlightedCSV,
	)
	if err != nil {
		return domain.WalkSession{}, err
	}
	w.HighlightedPOIIDs = splitIDs(highlightedCSV)
	return w, nil
}

const walkSessionColumns = `
	id, user_id, route_id, started_at, ended_at,
	distance_meters, duration_seconds, elevation_gain_meters,
	highlighted_poi_ids
`

func (s *WalkSessionStore) Create(ctx context.Context, session domain.WalkSession) (domain.WalkSession, error) {
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO walk_sessions (`+walkSessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING
	`, session.ID, session.UserID, session.RouteID, session.StartedAt, session.EndedAt,
		session.Stats.DistanceMeters, session.Stats.DurationSeconds, session.Stats.ElevationGainMeters,
		joinIDs(session.HighlightedPOIIDs))
	if err != nil {
		return domain.WalkSession{}, mapError(err, "")
	}
	return s.Get(ctx, session.UserID, session.ID)
}

func (s *WalkSessionStore) Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.WalkSession, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT `+walkSessionColumns+`
		FROM walk_sessions
		WHERE user_id = $1 AND id = $2
	`, userID, sessionID)
	w, err := scanWalkSessionRow(row)
	if err != nil {
		return domain.WalkSession{}, mapError(err, "walk session not found")
	}
	return w, nil
}
