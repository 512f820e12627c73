package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// RouteStore implements ports.RouteRepository.
type RouteStore struct {
	mu
	byID     map[uuid.UUID]domain.Route
	onCreate func(uuid.UUID) // wired to AnnotationStore.RegisterRoute by the composition root
}

func NewRouteStore(onCreate func(uuid.UUID)) *RouteStore {
	return &RouteStore{byID: make(map[uuid.UUID]domain.Route), onCreate: onCreate}
}

func (s *RouteStore) Create(_ context.Context, route domain.Route) (domain.Route, error) {
	s.Lock()
	if existing, ok := s.byID[route.ID]; ok {
		s.Unlock()
		return existing, nil
	}
	s.byID[route.ID] = route
	s.Unlock()

	if s.onCreate != nil {
		s.onCreate(route.ID)
	}
	return route, nil
}
