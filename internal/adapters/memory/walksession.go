package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// WalkSessionStore implements ports.WalkSessionRepository.
type WalkSessionStore struct {
	mu
	byID map[uuid.UUID]domain.WalkSession
}

func NewWalkSessionStore() *WalkSessionStore {
	return &WalkSessionStore{byID: make(map[uuid.UUID]domain.WalkSession)}
}

func (s *WalkSessionStore) Create(_ context.Context, session domain.WalkSession) (domain.WalkSession, error) {
	s.Lock()
	defer s.Unlock()
	if existing, ok := s.byID[session.ID]; ok {
		if existing.UserID == session.UserID {
			return existing, nil
		}
		return domain.WalkSession{}, domain.NewPortError(domain.PortConflict, "session id already owned by another user", nil)
	}
	s.byID[session.ID] = session
	return session, nil
}

func (s *WalkSessionStore) Get(_ context.Context, userID, sessionID uuid.UUID) (domain.WalkSession, error) {
	s.Lock()
	defer s.Unlock()
	w, ok := s.byID[sessionID]
	if !ok || w.UserID != userID {
		return domain.WalkSession{}, domain.NewPortError(domain.PortNotFound, "walk session not found", nil)
	}
	return w, nil
}
