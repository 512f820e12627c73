// Package offlinebundle implements the offline-bundle driving service
// (spec §4.4 "Offline bundle command") and its HTTP handler.
package offlinebundle

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
	"github.com/wisbric/waypoint/internal/ports"
)

type Service struct {
	repo   ports.OfflineBundleRepository
	idem   *idempotency.Engine
	logger *slog.Logger
}

func NewService(repo ports.OfflineBundleRepository, idem *idempotency.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, idem: idem, logger: logger}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, deviceID string) ([]domain.OfflineBundle, error) {
	bundles, err := s.repo.List(ctx, userID, deviceID)
	if err != nil {
		return nil, domain.FromPortError(err, "")
	}
	return bundles, nil
}

type CreateInput struct {
	UserID         uuid.UUID
	IdempotencyKey uuid.UUID
	ID             uuid.UUID
	DeviceID       string
	Bounds         domain.BoundingBox
	Zoom           domain.ZoomRange
	EstimatedSize  int64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.OfflineBundle, error) {
	payload := map[string]any{
		"id":            in.ID,
		"deviceId":      in.DeviceID,
		"bounds":        in.Bounds,
		"zoom":          in.Zoom,
		"estimatedSize": in.EstimatedSize,
	}
	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationBundles, payload,
		func(ctx context.Context) (any, error) {
			return s.create(ctx, in)
		})
	if err != nil {
		return domain.OfflineBundle{}, err
	}
	if outcome.Kind == idempotency.Conflict {
		return domain.OfflineBundle{}, domain.Conflict("idempotency key reused with a different payload")
	}
	var bundle domain.OfflineBundle
	if err := unmarshalResponse(outcome.Response, &bundle); err != nil {
		return domain.OfflineBundle{}, domain.Internal("decoding stored response", err)
	}
	return bundle, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (domain.OfflineBundle, error) {
	bundle := domain.OfflineBundle{
		ID:            in.ID,
		UserID:        in.UserID,
		DeviceID:      in.DeviceID,
		Bounds:        in.Bounds,
		Zoom:          in.Zoom,
		Status:        domain.BundlePending,
		Progress:      0,
		EstimatedSize: in.EstimatedSize,
	}
	if err := bundle.Validate(); err != nil {
		return domain.OfflineBundle{}, err
	}
	stored, err := s.repo.Create(ctx, bundle)
	if err != nil {
		return domain.OfflineBundle{}, domain.FromPortError(err, "")
	}
	return stored, nil
}

type DeleteInput struct {
	UserID         uuid.UUID
	IdempotencyKey uuid.UUID
	BundleID       uuid.UUID
}

func (s *Service) Delete(ctx context.Context, in DeleteInput) error {
	payload := map[string]any{"bundleId": in.BundleID}
	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationBundles, payload,
		func(ctx context.Context) (any, error) {
			if err := s.repo.Delete(ctx, in.UserID, in.BundleID); err != nil {
				return nil, domain.FromPortError(err, "offline bundle not found")
			}
			return struct{}{}, nil
		})
	if err != nil {
		return err
	}
	if outcome.Kind == idempotency.Conflict {
		return domain.Conflict("idempotency key reused with a different payload")
	}
	return nil
}
