package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/revision"
)

// PreferencesStore implements ports.PreferencesRepository.
type PreferencesStore struct {
	mu
	byUser map[uuid.UUID]domain.UserPreferences
	now    clock
}

func NewPreferencesStore() *PreferencesStore {
	return &PreferencesStore{byUser: make(map[uuid.UUID]domain.UserPreferences), now: realClock}
}

func (s *PreferencesStore) Get(_ context.Context, userID uuid.UUID) (domain.UserPreferences, error) {
	s.Lock()
	defer s.Unlock()
	p, ok := s.byUser[userID]
	if !ok {
		return domain.UserPreferences{}, domain.NewPortError(domain.PortNotFound, "preferences not found", nil)
	}
	return p, nil
}

func (s *PreferencesStore) Upsert(_ context.Context, prefs domain.UserPreferences, expectedRevision *uint32) (domain.UserPreferences, error) {
	s.Lock()
	defer s.Unlock()

	existing, ok := s.byUser[prefs.UserID]
	var current uint32
	if ok {
		current = existing.Revision
	}
	if err := revision.Check(expectedRevision, current); err != nil {
		de, _ := domain.AsError(err)
		return domain.UserPreferences{}, domain.NewPortRevisionMismatch(de.Expected, de.Actual)
	}

	prefs.Revision = revision.Next(current)
	prefs.UpdatedAt = s.now()
	s.byUser[prefs.UserID] = prefs
	return prefs, nil
}
