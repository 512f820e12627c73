// Package revision implements the optimistic-concurrency protocol shared by
// UserPreferences, RouteNote, and RouteProgress (spec §4.3): a monotonic
// revision counter plus an optional expectedRevision on writes.
package revision

import "github.com/wisbric/waypoint/internal/domain"

// Check validates a caller-supplied expectedRevision against the current
// stored revision, per spec §4.3:
//
//   - expectedRevision absent (nil): blind write, always accepted.
//   - expectedRevision present and equal to current: accepted.
//   - expectedRevision present and different from current: rejected with
//     domain.RevisionMismatch{expected, actual}.
//
// It does not mutate anything; callers combine it with Next to compute the
// revision to persist.
func Check(expected *uint32, current uint32) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return domain.RevisionMismatch(*expected, current)
	}
	return nil
}

// CheckCreate validates expectedRevision for a first-write (no row exists
// yet). Spec §4.3: "On create, expectedRevision is accepted only if absent
// or 0" — any other value is a mismatch against the implicit current
// revision of 0.
func CheckCreate(expected *uint32) error {
	if expected == nil || *expected == 0 {
		return nil
	}
	return domain.RevisionMismatch(*expected, 0)
}

// Next returns the revision to store for the next write: 1 for the first
// write (current == 0), else current+1.
func Next(current uint32) uint32 {
	return current + 1
}
