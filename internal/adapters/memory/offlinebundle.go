package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// OfflineBundleStore implements ports.OfflineBundleRepository.
type OfflineBundleStore struct {
	mu
	byID map[uuid.UUID]domain.OfflineBundle
}

func NewOfflineBundleStore() *OfflineBundleStore {
	return &OfflineBundleStore{byID: make(map[uuid.UUID]domain.OfflineBundle)}
}

func (s *OfflineBundleStore) List(_ context.Context, userID uuid.UUID, deviceID string) ([]domain.OfflineBundle, error) {
	s.Lock()
	defer s.Unlock()
	var out []domain.OfflineBundle
	for _, b := range s.byID {
		if b.UserID != userID {
			continue
		}
		if deviceID != "" && b.DeviceID != deviceID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *OfflineBundleStore) Get(_ context.Context, userID, bundleID uuid.UUID) (domain.OfflineBundle, error) {
	s.Lock()
	defer s.Unlock()
	b, ok := s.byID[bundleID]
	if !ok || b.UserID != userID {
		return domain.OfflineBundle{}, domain.NewPortError(domain.PortNotFound, "offline bundle not found", nil)
	}
	return b, nil
}

func (s *OfflineBundleStore) Create(_ context.Context, bundle domain.OfflineBundle) (domain.OfflineBundle, error) {
	s.Lock()
	defer s.Unlock()
	if existing, ok := s.byID[bundle.ID]; ok {
		if existing.UserID == bundle.UserID {
			return existing, nil
		}
		return domain.OfflineBundle{}, domain.NewPortError(domain.PortConflict, "bundle id already owned by another user", nil)
	}
	s.byID[bundle.ID] = bundle
	return bundle, nil
}

func (s *OfflineBundleStore) Delete(_ context.Context, userID, bundleID uuid.UUID) error {
	s.Lock()
	defer s.Unlock()
	b, ok := s.byID[bundleID]
	if !ok || b.UserID != userID {
		return domain.NewPortError(domain.PortNotFound, "offline bundle not found", nil)
	}
	delete(s.byID, bundleID)
	return nil
}
