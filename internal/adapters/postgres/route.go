package postgres

import (
	"context"
	"time"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// RouteStore implements ports.RouteRepository over the routes table. Routes
// are immutable once created (spec §3 Route).
type RouteStore struct {
	dbtx db.DBTX
}

func NewRouteStore(dbtx db.DBTX) *RouteStore {
	return &RouteStore{dbtx: dbtx}
}

func (s *RouteStore) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	route.CreatedAt = time.Now().UTC()
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO routes (id, user_id, plan_json, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, route.ID, route.UserID, route.PlanJSON, route.CreatedAt)
	if err != nil {
		return domain.Route{}, mapError(err, "")
	}

	var existing domain.Route
	err = s.dbtx.QueryRow(ctx, `
		SELECT id, user_id, plan_json, created_at FROM routes WHERE id = $1
	`, route.ID).Scan(&existing.ID, &existing.UserID, &existing.PlanJSON, &existing.CreatedAt)
	if err != nil {
		return domain.Route{}, mapError(err, "route not found")
	}
	return existing, nil
}
