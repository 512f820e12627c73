package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// PreferencesStore implements ports.PreferencesRepository over the
// user_preferences table.
type PreferencesStore struct {
	dbtx db.DBTX
}

func NewPreferencesStore(dbtx db.DBTX) *PreferencesStore {
	return &PreferencesStore{dbtx: dbtx}
}

func joinIDs(ids []string) string   { return strings.Join(ids, ",") }
func splitIDs(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

func (s *PreferencesStore) Get(ctx context.Context, userID uuid.UUID) (domain.UserPreferences, error) {
	var p domain.UserPreferences
	var interestCSV, safetyCSV string
	err := s.dbtx.QueryRow(ctx, `
		SELECT user_id, interest_theme_ids, safety_toggle_ids, unit_system, revision, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &interestCSV, &safetyCSV, &p.UnitSystem, &p.Revision, &p.UpdatedAt)
	if err != nil {
		return domain.UserPreferences{}, mapError(err, "preferences not found")
	}
	p.InterestThemeIDs = splitIDs(interestCSV)
	p.SafetyToggleIDs = splitIDs(safetyCSV)
	return p, nil
}

// Upsert implements the create-at-revision-1/update-at-revision+1 protocol
// (ports.PreferencesRepository doc comment), matching the memory adapter's
// semantics exactly so the two backends are contract-parity siblings.
func (s *PreferencesStore) Upsert(ctx context.Context, prefs domain.UserPreferences, expectedRevision *uint32) (domain.UserPreferences, error) {
	var currentRevision uint32
	err := s.dbtx.QueryRow(ctx, `
		SELECT revision FROM user_preferences WHERE user_id = $1
	`, prefs.UserID).Scan(&currentRevision)
	exists := true
	if err != nil {
		if notFound := mapError(err, ""); notFound.Kind == domain.PortNotFound {
			exists = false
			currentRevision = 0
		} else {
			return domain.UserPreferences{}, notFound
		}
	}

	if expectedRevision != nil && *expectedRevision != currentRevision {
		return domain.UserPreferences{}, domain.NewPortRevisionMismatch(*expectedRevision, currentRevision)
	}

	prefs.Revision = currentRevision + 1
	prefs.UpdatedAt = time.Now().UTC()

	tag, err := s.dbtx.Exec(ctx, `
		INSERT INTO user_preferences (user_id, interest_theme_ids, safety_toggle_ids, unit_system, revision, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			interest_theme_ids = EXCLUDED.interest_theme_ids,
			safety_toggle_ids = EXCLUDED.safety_toggle_ids,
			unit_system = EXCLUDED.unit_system,
			revision = EXCLUDED.revision,
			updated_at = EXCLUDED.updated_at
		WHERE user_preferences.revision = $7
	`, prefs.UserID, joinIDs(prefs.InterestThemeIDs), joinIDs(prefs.SafetyToggleIDs), prefs.UnitSystem, prefs.Revision, prefs.UpdatedAt, currentRevision)
	if err != nil {
		return domain.UserPreferences{}, mapError(err, "")
	}
	if exists && tag.RowsAffected() == 0 {
		// Another writer updated the row between our read and this write.
		return domain.UserPreferences{}, domain.NewPortRevisionMismatch(currentRevision, currentRevision+1)
	}
	return prefs, nil
}
