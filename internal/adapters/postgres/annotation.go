package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// AnnotationStore implements ports.AnnotationRepository over the
// route_notes and route_progress tables.
type AnnotationStore struct {
	dbtx db.DBTX
}

func NewAnnotationStore(dbtx db.DBTX) *AnnotationStore {
	return &AnnotationStore{dbtx: dbtx}
}

func (s *AnnotationStore) RouteExists(ctx context.Context, routeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.dbtx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)
	`, routeID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "")
	}
	return exists, nil
}

func scanNoteRow(row interface{ Scan(dest ...any) error }) (domain.RouteNote, error) {
	var n domain.RouteNote
	var historyJSON []byte
	err := row.Scan(&n.ID, &n.RouteID, &n.UserID, &n.POIID, &n.Body, &n.Revision, &n.CreatedAt, &n.UpdatedAt, &historyJSON)
	if err != nil {
		return domain.RouteNote{}, err
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &n.History); err != nil {
			return domain.RouteNote{}, err
		}
	}
	return n, nil
}

func (s *AnnotationStore) GetNote(ctx context.Context, routeID, userID, noteID uuid.UUID) (domain.RouteNote, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT id, route_id, user_id, poi_id, body, revision, created_at, updated_at, history
		FROM route_notes
		WHERE route_id = $1 AND user_id = $2 AND id = $3
	`, routeID, userID, noteID)
	n, err := scanNoteRow(row)
	if err != nil {
		return domain.RouteNote{}, mapError(err, "note not found")
	}
	return n, nil
}

func (s *AnnotationStore) ListNotes(ctx context.Context, routeID, userID uuid.UUID) ([]domain.RouteNote, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT id, route_id, user_id, poi_id, body, revision, created_at, updated_at, history
		FROM route_notes
		WHERE route_id = $1 AND user_id = $2
		ORDER BY created_at ASC, id ASC
	`, routeID, userID)
	if err != nil {
		return nil, mapError(err, "")
	}
	defer rows.Close()

	var notes []domain.RouteNote
	for rows.Next() {
		n, err := scanNoteRow(rows)
		if err != nil {
			return nil, mapError(err, "")
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "")
	}
	return notes, nil
}

// UpsertNote appends a history entry when the body changes, matching the
// memory adapter's audit behaviour (SPEC_FULL.md supplemented feature).
func (s *AnnotationStore) UpsertNote(ctx context.Context, note domain.RouteNote, expectedRevision *uint32) (domain.RouteNote, error) {
	existing, err := s.GetNote(ctx, note.RouteID, note.UserID, note.ID)
	exists := true
	if err != nil {
		if pe, ok := err.(*domain.PortError); ok && pe.Kind == domain.PortNotFound {
			exists = false
		} else {
			return domain.RouteNote{}, err
		}
	}

	currentRevision := uint32(0)
	history := note.History
	if exists {
		currentRevision = existing.Revision
		history = existing.History
		if existing.Body != note.Body {
			history = append(history, domain.NoteHistoryEntry{
				OldBody:   existing.Body,
				NewBody:   note.Body,
				ChangedBy: note.UserID,
				ChangedAt: time.Now().UTC(),
			})
		}
		note.CreatedAt = existing.CreatedAt
	} else {
		note.CreatedAt = time.Now().UTC()
	}

	if expectedRevision != nil && *expectedRevision != currentRevision {
		return domain.RouteNote{}, domain.NewPortRevisionMismatch(*expectedRevision, currentRevision)
	}

	note.Revision = currentRevision + 1
	note.UpdatedAt = time.Now().UTC()
	note.History = history

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return domain.RouteNote{}, domain.NewPortError(domain.PortSerialization, "note history marshal failed", err)
	}

	tag, err := s.dbtx.Exec(ctx, `
		INSERT INTO route_notes (id, route_id, user_id, poi_id, body, revision, created_at, updated_at, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			poi_id = EXCLUDED.poi_id,
			body = EXCLUDED.body,
			revision = EXCLUDED.revision,
			updated_at = EXCLUDED.updated_at,
			history = EXCLUDED.history
		WHERE route_notes.revision = $10
	`, note.ID, note.RouteID, note.UserID, note.POIID, note.Body, note.Revision, note.CreatedAt, note.UpdatedAt, historyJSON, currentRevision)
	if err != nil {
		return domain.RouteNote{}, mapError(err, "")
	}
	if exists && tag.RowsAffected() == 0 {
		return domain.RouteNote{}, domain.NewPortRevisionMismatch(currentRevision, currentRevision+1)
	}
	return note, nil
}

func (s *AnnotationStore) GetProgress(ctx context.Context, routeID, userID uuid.UUID) (domain.RouteProgress, error) {
	var p domain.RouteProgress
	var visitedCSV string
	err := s.dbtx.QueryRow(ctx, `
		SELECT route_id, user_id, visited_stop_ids, revision, updated_at
		FROM route_progress
		WHERE route_id = $1 AND user_id = $2
	`, routeID, userID).Scan(&p.RouteID, &p.UserID, &visitedCSV, &p.Revision, &p.UpdatedAt)
	if err != nil {
		return domain.RouteProgress{}, mapError(err, "progress not found")
	}
	p.VisitedStopIDs = splitIDs(visitedCSV)
	return p, nil
}

func (s *AnnotationStore) UpsertProgress(ctx context.Context, progress domain.RouteProgress, expectedRevision *uint32) (domain.RouteProgress, error) {
	var currentRevision uint32
	err := s.dbtx.QueryRow(ctx, `
		SELECT revision FROM route_progress WHERE route_id = $1 AND user_id = $2
	`, progress.RouteID, progress.UserID).Scan(&currentRevision)
	exists := true
	if err != nil {
		if pe := mapError(err, ""); pe.Kind == domain.PortNotFound {
			exists = false
			currentRevision = 0
		} else {
			return domain.RouteProgress{}, pe
		}
	}

	if expectedRevision != nil && *expectedRevision != currentRevision {
		return domain.RouteProgress{}, domain.NewPortRevisionMismatch(*expectedRevision, currentRevision)
	}

	progress.Revision = currentRevision + 1
	progress.UpdatedAt = time.Now().UTC()

	tag, err := s.dbtx.Exec(ctx, `
		INSERT INTO route_progress (route_id, user_id, visited_stop_ids, revision, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (route_id, user_id) DO UPDATE SET
			visited_stop_ids = EXCLUDED.visited_stop_ids,
			revision = EXCLUDED.revision,
			updated_at = EXCLUDED.updated_at
		WHERE route_progress.revision = $6
	`, progress.RouteID, progress.UserID, joinIDs(progress.VisitedStopIDs), progress.Revision, progress.UpdatedAt, currentRevision)
	if err != nil {
		return domain.RouteProgress{}, mapError(err, "")
	}
	if exists && tag.RowsAffected() == 0 {
		return domain.RouteProgress{}, domain.NewPortRevisionMismatch(currentRevision, currentRevision+1)
	}
	return progress, nil
}
