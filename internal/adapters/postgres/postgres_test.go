package postgres

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wisbric/waypoint/internal/domain"
)

// These exercise the postgres adapter's pure, DB-free helpers: error
// classification and the CSV/JSON encodings used by the row<->domain
// mapping, matching SPEC_FULL.md §5.2's "logic-only stub" parity testing
// approach (no live database required).

func TestMapError_NoRows(t *testing.T) {
	pe := mapError(pgx.ErrNoRows, "widget not found")
	if pe.Kind != domain.PortNotFound {
		t.Fatalf("expected PortNotFound, got %v", pe.Kind)
	}
	if pe.Message != "widget not found" {
		t.Fatalf("expected notFoundMsg to propagate, got %q", pe.Message)
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode}
	pe := mapError(pgErr, "")
	if pe.Kind != domain.PortConflict {
		t.Fatalf("expected PortConflict, got %v", pe.Kind)
	}
}

func TestMapError_OtherPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42601"} // syntax_error
	pe := mapError(pgErr, "")
	if pe.Kind != domain.PortQuery {
		t.Fatalf("expected PortQuery, got %v", pe.Kind)
	}
}

func TestMapError_ConnectionFailure(t *testing.T) {
	pe := mapError(errors.New("dial tcp: connection refused"), "")
	if pe.Kind != domain.PortConnection {
		t.Fatalf("expected PortConnection, got %v", pe.Kind)
	}
}

func TestMapError_Nil(t *testing.T) {
	if mapError(nil, "") != nil {
		t.Fatal("expected nil error to map to nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}) {
		t.Fatal("expected unique violation to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected foreign-key violation to not be a unique violation")
	}
	if isUniqueViolation(errors.New("not a pg error")) {
		t.Fatal("expected non-pg error to return false")
	}
}

func TestJoinSplitIDs_RoundTrip(t *testing.T) {
	ids := []string{"theme-scenic", "theme-historic", "theme-water"}
	csv := joinIDs(ids)
	if got := splitIDs(csv); !reflect.DeepEqual(got, ids) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, ids)
	}
}

func TestSplitIDs_Empty(t *testing.T) {
	if got := splitIDs(""); got != nil {
		t.Fatalf("expected nil for empty CSV, got %v", got)
	}
}

func TestLocalizationJSON_RoundTrip(t *testing.T) {
	m := map[string]string{"en": "Riverside Loop", "fr": "Boucle de la Rivière"}
	raw := localizationJSON(m)
	got := unmarshalLocalization(raw)
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, m)
	}
}

func TestUnmarshalLocalization_Invalid(t *testing.T) {
	if got := unmarshalLocalization([]byte("not json")); got != nil {
		t.Fatalf("expected nil map for invalid JSON, got %v", got)
	}
}
