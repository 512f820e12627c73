// Package catalogue implements the catalogue/descriptor query driving
// service (spec §4.4 "Catalogue / descriptor query") and its HTTP handler.
package catalogue

import (
	"context"
	"log/slog"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
)

type Service struct {
	catalogue  ports.CatalogueRepository
	descriptor ports.DescriptorRepository
	logger     *slog.Logger
}

func NewService(catalogue ports.CatalogueRepository, descriptor ports.DescriptorRepository, logger *slog.Logger) *Service {
	return &Service{catalogue: catalogue, descriptor: descriptor, logger: logger}
}

func (s *Service) Explore(ctx context.Context) (domain.ExploreCatalogueSnapshot, error) {
	snap, err := s.catalogue.ExploreSnapshot(ctx)
	if err != nil {
		return domain.ExploreCatalogueSnapshot{}, domain.FromPortError(err, "")
	}
	return snap, nil
}

func (s *Service) Descriptors(ctx context.Context) (domain.DescriptorSnapshot, error) {
	snap, err := s.descriptor.DescriptorSnapshot(ctx)
	if err != nil {
		return domain.DescriptorSnapshot{}, domain.FromPortError(err, "")
	}
	return snap, nil
}
