package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultPageSize is the default number of items per page (spec §4.6).
	DefaultPageSize = 50
	// MaxPageSize is the maximum allowed page size (spec §4.6).
	MaxPageSize = 200
)

// ProvenanceParams holds the parsed query parameters for the admin
// enrichment-provenance keyset pagination (spec §6: `?limit=&before=`).
type ProvenanceParams struct {
	Limit  int
	Before *time.Time // nil means start from the most recent record
}

// ParseProvenanceParams extracts limit/before from the request query string.
// before is an RFC 3339 timestamp naming the exclusive upper bound on
// importedAt, matching ports.EnrichmentProvenanceRepository.ListRecent.
func ParseProvenanceParams(r *http.Request) (ProvenanceParams, error) {
	p := ProvenanceParams{Limit: DefaultPageSize}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("limit must be a positive integer")
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		p.Limit = n
	}

	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return p, fmt.Errorf("before must be an RFC 3339 timestamp")
		}
		p.Before = &t
	}

	return p, nil
}

// ProvenancePage is the response envelope for GET
// /api/v1/admin/enrichment/provenance (spec §6: `{records, nextBefore?}`).
type ProvenancePage[T any] struct {
	Records    []T     `json:"records"`
	NextBefore *string `json:"nextBefore,omitempty"`
}

// NewProvenancePage builds a ProvenancePage from a result set fetched with
// limit+1 rows, trimming to limit and deriving nextBefore from the last
// retained item's importedAt when more rows remain.
func NewProvenancePage[T any](items []T, limit int, importedAtFn func(T) time.Time) ProvenancePage[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	page := ProvenancePage[T]{Records: items}
	if hasMore && len(items) > 0 {
		next := importedAtFn(items[len(items)-1]).Format(time.RFC3339)
		page.NextBefore = &next
	}
	return page
}
