// Package walksession implements the walk-session driving service (spec
// §4.4 "Walk session command") and its HTTP handler. Unlike the other
// mutating commands, walk-session creation is not idempotency-gated (spec
// §6 endpoint table): the client supplies a stable id and a duplicate
// POST with the same id is handled directly by the repository.
package walksession

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
)

type Service struct {
	repo   ports.WalkSessionRepository
	logger *slog.Logger
}

func NewService(repo ports.WalkSessionRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type CreateInput struct {
	UserID            uuid.UUID
	ID                uuid.UUID
	RouteID           uuid.UUID
	StartedAt         time.Time
	EndedAt           *time.Time
	Stats             domain.WalkSessionStats
	HighlightedPOIIDs []string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.WalkSession, error) {
	session := domain.WalkSession{
		ID:                in.ID,
		UserID:            in.UserID,
		RouteID:           in.RouteID,
		StartedAt:         in.StartedAt,
		EndedAt:           in.EndedAt,
		Stats:             in.Stats,
		HighlightedPOIIDs: in.HighlightedPOIIDs,
	}
	if err := session.Validate(); err != nil {
		return domain.WalkSession{}, err
	}
	stored, err := s.repo.Create(ctx, session)
	if err != nil {
		return domain.WalkSession{}, domain.FromPortError(err, "")
	}
	return stored, nil
}

func (s *Service) Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.WalkSession, error) {
	session, err := s.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return domain.WalkSession{}, domain.FromPortError(err, "walk session not found")
	}
	return session, nil
}
