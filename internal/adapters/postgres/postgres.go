// Package postgres implements every driven port in internal/ports over
// Postgres via pgx: raw SQL via db.DBTX, scan helpers per row shape,
// deterministic ORDER BY on every list read, and port-error mapping at the
// adapter boundary so services never see a pgx error directly (spec §4.6).
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// uniqueViolationCode is the Postgres error code for a unique-constraint
// violation; mapError turns it into PortConflict (e.g. an idempotency-key
// insert race).
const uniqueViolationCode = "23505"

func mapError(err error, notFoundMsg string) *domain.PortError {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewPortError(domain.PortNotFound, notFoundMsg, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return domain.NewPortError(domain.PortConflict, "unique constraint violated", err)
		}
		return domain.NewPortError(domain.PortQuery, "database query failed", err)
	}
	return domain.NewPortError(domain.PortConnection, "database connection failed", err)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, the same condition mapError checks. No adapter calls it
// directly; every adapter maps errors through mapError.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// txRunner lets adapters accept either a pool or an explicit transaction,
// matching db.DBTX's "works over a pool, a tx, or a conn" contract.
type txRunner interface {
	db.DBTX
}
