// Package preferences implements the preferences command driving service
// (spec §4.4 "Preferences command") and its HTTP handler.
package preferences

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

// Service orchestrates preferences reads and the idempotency-wrapped,
// revision-protected update (spec §4.4).
type Service struct {
	repo   ports.PreferencesRepository
	idem   *idempotency.Engine
	logger *slog.Logger
}

func NewService(repo ports.PreferencesRepository, idem *idempotency.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, idem: idem, logger: logger}
}

// Get returns the caller's preferences. If none have ever been set (spec §3
// "implicit-create on first mutation"), the adapter reports an absent row
// and Get returns a NotFound error ("preferences not set"), which the
// handler surfaces as 404; no defaults are returned.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (domain.UserPreferences, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.UserPreferences{}, domain.FromPortError(err, "preferences not set")
	}
	return prefs, nil
}

// UpdateInput is what the handler extracts from the validated DTO.
type UpdateInput struct {
	UserID           uuid.UUID
	IdempotencyKey   uuid.UUID
	InterestThemeIDs []string
	SafetyToggleIDs  []string
	UnitSystem       domain.UnitSystem
	ExpectedRevision *uint32
}

// Update runs the idempotency-wrapped, revision-protected preferences write
// (spec §4.4, §4.3). MutationRoutes/Notes/etc are distinguished via
// domain.MutationPreferences so distinct-kind key reuse never collides.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.UserPreferences, error) {
	payload := map[string]any{
		"interestThemeIds": in.InterestThemeIDs,
		"safetyToggleIds":  in.SafetyToggleIDs,
		"unitSystem":       in.UnitSystem,
		"expectedRevision": in.ExpectedRevision,
	}

	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationPreferences, payload,
		func(ctx context.Context) (any, error) {
			return s.apply(ctx, in)
		})
	if err != nil {
		return domain.UserPreferences{}, err
	}
	switch outcome.Kind {
	case idempotency.Conflict:
		return domain.UserPreferences{}, domain.Conflict("idempotency key reused with a different payload")
	default:
		var prefs domain.UserPreferences
		if err := unmarshalResponse(outcome.Response, &prefs); err != nil {
			return domain.UserPreferences{}, domain.Internal("decoding stored response", err)
		}
		return prefs, nil
	}
}

func (s *Service) apply(ctx context.Context, in UpdateInput) (domain.UserPreferences, error) {
	existing, err := s.repo.Get(ctx, in.UserID)
	var current uint32
	if err == nil {
		current = existing.Revision
	} else if !isNotFound(err) {
		return domain.UserPreferences{}, domain.FromPortError(err, "")
	}

	if current == 0 {
		if checkErr := revision.CheckCreate(in.ExpectedRevision); checkErr != nil {
			telemetry.RevisionMismatchesTotal.WithLabelValues("preferences").Inc()
			return domain.UserPreferences{}, checkErr
		}
	} else if checkErr := revision.Check(in.ExpectedRevision, current); checkErr != nil {
		telemetry.RevisionMismatchesTotal.WithLabelValues("preferences").Inc()
		return domain.UserPreferences{}, checkErr
	}

	prefs := domain.UserPreferences{
		UserID:           in.UserID,
		InterestThemeIDs: in.InterestThemeIDs,
		SafetyToggleIDs:  in.SafetyToggleIDs,
		UnitSystem:       in.UnitSystem,
	}

	stored, err := s.repo.Upsert(ctx, prefs, in.ExpectedRevision)
	if err != nil {
		return domain.UserPreferences{}, domain.FromPortError(err, "")
	}
	return stored, nil
}

func isNotFound(err error) bool {
	pe, ok := err.(*domain.PortError)
	return ok && pe.Kind == domain.PortNotFound
}
