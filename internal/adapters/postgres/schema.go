package postgres

import (
	"context"
	"strconv"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// SchemaStore implements ports.SchemaRepository by reporting the highest
// applied golang-migrate version (spec §3 "schema snapshot" driven port).
type SchemaStore struct {
	dbtx db.DBTX
}

func NewSchemaStore(dbtx db.DBTX) *SchemaStore {
	return &SchemaStore{dbtx: dbtx}
}

func (s *SchemaStore) SchemaVersion(ctx context.Context) (string, error) {
	var version int64
	var dirty bool
	err := s.dbtx.QueryRow(ctx, `
		SELECT version, dirty FROM schema_migrations LIMIT 1
	`).Scan(&version, &dirty)
	if err != nil {
		return "", mapError(err, "schema version not found")
	}
	if dirty {
		return "", domain.NewPortError(domain.PortQuery, "schema migrations are in a dirty state", nil)
	}
	return strconv.FormatInt(version, 10), nil
}
