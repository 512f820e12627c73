// Package user implements the minimal user read model (spec §6 "GET
// /users") and its HTTP handler.
package user

import (
	"context"
	"log/slog"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
)

type Service struct {
	repo   ports.UserRepository
	logger *slog.Logger
}

func NewService(repo ports.UserRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.FromPortError(err, "")
	}
	return users, nil
}
