package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/revision"
)

type noteKey struct {
	routeID uuid.UUID
	userID  uuid.UUID
	noteID  uuid.UUID
}

type progressKey struct {
	routeID uuid.UUID
	userID  uuid.UUID
}

// AnnotationStore implements ports.AnnotationRepository.
type AnnotationStore struct {
	mu
	notes     map[noteKey]domain.RouteNote
	progress  map[progressKey]domain.RouteProgress
	routeIDs  map[uuid.UUID]struct{}
	now       clock
}

// NewAnnotationStore takes the set of route IDs known to exist, so
// RouteExists can be answered without a separate route store dependency.
func NewAnnotationStore(knownRouteIDs []uuid.UUID) *AnnotationStore {
	routes := make(map[uuid.UUID]struct{}, len(knownRouteIDs))
	for _, id := range knownRouteIDs {
		routes[id] = struct{}{}
	}
	return &AnnotationStore{
		notes:    make(map[noteKey]domain.RouteNote),
		progress: make(map[progressKey]domain.RouteProgress),
		routeIDs: routes,
		now:      realClock,
	}
}

// RegisterRoute makes a newly submitted route visible to RouteExists.
func (s *AnnotationStore) RegisterRoute(id uuid.UUID) {
	s.Lock()
	defer s.Unlock()
	s.routeIDs[id] = struct{}{}
}

func (s *AnnotationStore) RouteExists(_ context.Context, routeID uuid.UUID) (bool, error) {
	s.Lock()
	defer s.Unlock()
	_, ok := s.routeIDs[routeID]
	return ok, nil
}

func (s *AnnotationStore) GetNote(_ context.Context, routeID, userID, noteID uuid.UUID) (domain.RouteNote, error) {
	s.Lock()
	defer s.Unlock()
	n, ok := s.notes[noteKey{routeID, userID, noteID}]
	if !ok {
		return domain.RouteNote{}, domain.NewPortError(domain.PortNotFound, "note not found", nil)
	}
	return n, nil
}

func (s *AnnotationStore) ListNotes(_ context.Context, routeID, userID uuid.UUID) ([]domain.RouteNote, error) {
	s.Lock()
	defer s.Unlock()
	var out []domain.RouteNote
	for k, n := range s.notes {
		if k.routeID == routeID && k.userID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *AnnotationStore) UpsertNote(_ context.Context, note domain.RouteNote, expectedRevision *uint32) (domain.RouteNote, error) {
	s.Lock()
	defer s.Unlock()

	key := noteKey{note.RouteID, note.UserID, note.ID}
	existing, ok := s.notes[key]
	var current uint32
	if ok {
		current = existing.Revision
	}
	if err := revision.Check(expectedRevision, current); err != nil {
		de, _ := domain.AsError(err)
		return domain.RouteNote{}, domain.NewPortRevisionMismatch(de.Expected, de.Actual)
	}

	now := s.now()
	if ok && existing.Body != note.Body {
		note.History = append(append([]domain.NoteHistoryEntry{}, existing.History...), domain.NoteHistoryEntry{
			OldBody:   existing.Body,
			NewBody:   note.Body,
			ChangedBy: note.UserID,
			ChangedAt: now,
		})
		note.CreatedAt = existing.CreatedAt
	} else if ok {
		note.History = existing.History
		note.CreatedAt = existing.CreatedAt
	} else {
		note.CreatedAt = now
	}

	note.Revision = revision.Next(current)
	note.UpdatedAt = now
	s.notes[key] = note
	return note, nil
}

func (s *AnnotationStore) GetProgress(_ context.Context, routeID, userID uuid.UUID) (domain.RouteProgress, error) {
	s.Lock()
	defer s.Unlock()
	p, ok := s.progress[progressKey{routeID, userID}]
	if !ok {
		return domain.RouteProgress{}, domain.NewPortError(domain.PortNotFound, "progress not found", nil)
	}
	return p, nil
}

func (s *AnnotationStore) UpsertProgress(_ context.Context, progress domain.RouteProgress, expectedRevision *uint32) (domain.RouteProgress, error) {
	s.Lock()
	defer s.Unlock()

	key := progressKey{progress.RouteID, progress.UserID}
	existing, ok := s.progress[key]
	var current uint32
	if ok {
		current = existing.Revision
	}
	if err := revision.Check(expectedRevision, current); err != nil {
		de, _ := domain.AsError(err)
		return domain.RouteProgress{}, domain.NewPortRevisionMismatch(de.Expected, de.Actual)
	}

	progress.Revision = revision.Next(current)
	progress.UpdatedAt = s.now()
	s.progress[key] = progress
	return progress, nil
}
