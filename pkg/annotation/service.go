// Package annotation implements the route-note and route-progress driving
// services (spec §4.4 "Notes" and "Progress" commands) and their HTTP
// handlers.
package annotation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
	"github.com/wisbric/waypoint/internal/ports"
	"github.com/wisbric/waypoint/internal/revision"
	"github.com/wisbric/waypoint/internal/telemetry"
)

type Service struct {
	repo   ports.AnnotationRepository
	idem   *idempotency.Engine
	logger *slog.Logger
}

func NewService(repo ports.AnnotationRepository, idem *idempotency.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, idem: idem, logger: logger}
}

func (s *Service) ListNotes(ctx context.Context, routeID, userID uuid.UUID) ([]domain.RouteNote, error) {
	if err := s.requireRoute(ctx, routeID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, routeID, userID)
	if err != nil {
		return nil, domain.FromPortError(err, "")
	}
	return notes, nil
}

func (s *Service) GetNote(ctx context.Context, routeID, userID, noteID uuid.UUID) (domain.RouteNote, error) {
	note, err := s.repo.GetNote(ctx, routeID, userID, noteID)
	if err != nil {
		return domain.RouteNote{}, domain.FromPortError(err, "note not found")
	}
	return note, nil
}

type UpsertNoteInput struct {
	RouteID          uuid.UUID
	UserID           uuid.UUID
	NoteID           uuid.UUID
	IdempotencyKey   uuid.UUID
	Body             string
	POIID            *string
	ExpectedRevision *uint32
}

func (s *Service) UpsertNote(ctx context.Context, in UpsertNoteInput) (domain.RouteNote, error) {
	payload := map[string]any{
		"routeId":          in.RouteID,
		"noteId":           in.NoteID,
		"body":             in.Body,
		"poiId":            in.POIID,
		"expectedRevision": in.ExpectedRevision,
	}
	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationNotes, payload,
		func(ctx context.Context) (any, error) {
			return s.applyNote(ctx, in)
		})
	if err != nil {
		return domain.RouteNote{}, err
	}
	if outcome.Kind == idempotency.Conflict {
		return domain.RouteNote{}, domain.Conflict("idempotency key reused with a different payload")
	}
	var note domain.RouteNote
	if err := unmarshalResponse(outcome.Response, &note); err != nil {
		return domain.RouteNote{}, domain.Internal("decoding stored response", err)
	}
	return note, nil
}

func (s *Service) applyNote(ctx context.Context, in UpsertNoteInput) (domain.RouteNote, error) {
	if err := s.requireRoute(ctx, in.RouteID); err != nil {
		return domain.RouteNote{}, err
	}

	existing, err := s.repo.GetNote(ctx, in.RouteID, in.UserID, in.NoteID)
	var current uint32
	if err == nil {
		current = existing.Revision
	} else if !isNotFound(err) {
		return domain.RouteNote{}, domain.FromPortError(err, "")
	}

	if current == 0 {
		if checkErr := revision.CheckCreate(in.ExpectedRevision); checkErr != nil {
			telemetry.RevisionMismatchesTotal.WithLabelValues("note").Inc()
			return domain.RouteNote{}, checkErr
		}
	} else if checkErr := revision.Check(in.ExpectedRevision, current); checkErr != nil {
		telemetry.RevisionMismatchesTotal.WithLabelValues("note").Inc()
		return domain.RouteNote{}, checkErr
	}

	note := domain.RouteNote{
		ID:      in.NoteID,
		RouteID: in.RouteID,
		UserID:  in.UserID,
		POIID:   in.POIID,
		Body:    in.Body,
	}
	if err := note.Validate(); err != nil {
		return domain.RouteNote{}, err
	}

	stored, err := s.repo.UpsertNote(ctx, note, in.ExpectedRevision)
	if err != nil {
		return domain.RouteNote{}, domain.FromPortError(err, "")
	}
	return stored, nil
}

func (s *Service) GetProgress(ctx context.Context, routeID, userID uuid.UUID) (domain.RouteProgress, error) {
	p, err := s.repo.GetProgress(ctx, routeID, userID)
	if err != nil {
		return domain.RouteProgress{}, domain.FromPortError(err, "progress not found")
	}
	return p, nil
}

type UpsertProgressInput struct {
	RouteID          uuid.UUID
	UserID           uuid.UUID
	IdempotencyKey   uuid.UUID
	VisitedStopIDs   []string
	ExpectedRevision *uint32
}

func (s *Service) UpsertProgress(ctx context.Context, in UpsertProgressInput) (domain.RouteProgress, error) {
	payload := map[string]any{
		"routeId":          in.RouteID,
		"visitedStopIds":   in.VisitedStopIDs,
		"expectedRevision": in.ExpectedRevision,
	}
	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationProgress, payload,
		func(ctx context.Context) (any, error) {
			return s.applyProgress(ctx, in)
		})
	if err != nil {
		return domain.RouteProgress{}, err
	}
	if outcome.Kind == idempotency.Conflict {
		return domain.RouteProgress{}, domain.Conflict("idempotency key reused with a different payload")
	}
	var p domain.RouteProgress
	if err := unmarshalResponse(outcome.Response, &p); err != nil {
		return domain.RouteProgress{}, domain.Internal("decoding stored response", err)
	}
	return p, nil
}

func (s *Service) applyProgress(ctx context.Context, in UpsertProgressInput) (domain.RouteProgress, error) {
	if err := s.requireRoute(ctx, in.RouteID); err != nil {
		return domain.RouteProgress{}, err
	}

	existing, err := s.repo.GetProgress(ctx, in.RouteID, in.UserID)
	var current uint32
	if err == nil {
		current = existing.Revision
	} else if !isNotFound(err) {
		return domain.RouteProgress{}, domain.FromPortError(err, "")
	}

	if current == 0 {
		if checkErr := revision.CheckCreate(in.ExpectedRevision); checkErr != nil {
			telemetry.RevisionMismatchesTotal.WithLabelValues("progress").Inc()
			return domain.RouteProgress{}, checkErr
		}
	} else if checkErr := revision.Check(in.ExpectedRevision, current); checkErr != nil {
		telemetry.RevisionMismatchesTotal.WithLabelValues("progress").Inc()
		return domain.RouteProgress{}, checkErr
	}

	progress := domain.RouteProgress{
		RouteID:        in.RouteID,
		UserID:         in.UserID,
		VisitedStopIDs: in.VisitedStopIDs,
	}
	if err := progress.Validate(); err != nil {
		return domain.RouteProgress{}, err
	}

	stored, err := s.repo.UpsertProgress(ctx, progress, in.ExpectedRevision)
	if err != nil {
		return domain.RouteProgress{}, domain.FromPortError(err, "")
	}
	return stored, nil
}

func (s *Service) requireRoute(ctx context.Context, routeID uuid.UUID) error {
	exists, err := s.repo.RouteExists(ctx, routeID)
	if err != nil {
		return domain.FromPortError(err, "")
	}
	if !exists {
		return domain.NotFound("route not found")
	}
	return nil
}

func isNotFound(err error) bool {
	pe, ok := err.(*domain.PortError)
	return ok && pe.Kind == domain.PortNotFound
}
