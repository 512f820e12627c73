package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// UserStore is a fixed, preloaded set of users (spec §9 fixture startup
// mode — users are seeded, not self-registered).
type UserStore struct {
	mu
	byID       map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
}

// NewUserStore seeds the store with the given users.
func NewUserStore(seed []domain.User) *UserStore {
	s := &UserStore{
		byID:       make(map[uuid.UUID]domain.User, len(seed)),
		byUsername: make(map[string]uuid.UUID, len(seed)),
	}
	for _, u := range seed {
		s.byID[u.ID] = u
		s.byUsername[u.Username] = u.ID
	}
	return s
}

func (s *UserStore) Get(_ context.Context, id uuid.UUID) (domain.User, error) {
	s.Lock()
	defer s.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.NewPortError(domain.PortNotFound, "user not found", nil)
	}
	return u, nil
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.Lock()
	defer s.Unlock()
	out := make([]domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (domain.User, error) {
	s.Lock()
	defer s.Unlock()
	id, ok := s.byUsername[username]
	if !ok {
		return domain.User{}, domain.NewPortError(domain.PortNotFound, "user not found", nil)
	}
	return s.byID[id], nil
}
