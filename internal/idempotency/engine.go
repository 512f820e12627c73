// Package idempotency implements the request-deduplication engine from
// spec §4.2: fingerprint, lookup-or-insert, replay, and conflict detection,
// scoped by (key, userId, mutationType).
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
	"github.com/wisbric/waypoint/internal/telemetry"
)

// OutcomeKind describes how ReserveOrReplay resolved the request.
type OutcomeKind int

const (
	// Executed means the closure ran and its response was freshly stored.
	Executed OutcomeKind = iota
	// Replayed means a prior stored response was returned verbatim.
	Replayed
	// Conflict means the key was reused with a different payload.
	Conflict
)

// Outcome is the result of ReserveOrReplay.
type Outcome struct {
	Kind     OutcomeKind
	Response json.RawMessage
}

// Engine implements spec §4.2's reserve_or_replay(key, userId, mutationType,
// payloadHash, execute) contract.
type Engine struct {
	repo   ports.IdempotencyRepository
	cache  *RedisCache
	logger *slog.Logger
}

// NewEngine creates an idempotency Engine backed by the given repository.
func NewEngine(repo ports.IdempotencyRepository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// WithCache attaches a Redis fast-path cache; a nil cache (the default)
// means every lookup goes straight to the repository.
func (e *Engine) WithCache(cache *RedisCache) *Engine {
	e.cache = cache
	return e
}

// Execute is the closure signature ReserveOrReplay runs on a cache miss. It
// must return a JSON-serializable response value.
type Execute func(ctx context.Context) (any, error)

// ReserveOrReplay implements spec §4.2's algorithm exactly:
//
//  1. canonicalize+hash the payload (the caller passes payload, not a
//     pre-computed hash, so the engine owns canonicalization per §8 property 3).
//  2. look up (key, userId, mutationType): not found → step 3; found with
//     identical hash → Replayed; found with different hash → Conflict.
//  3. execute the caller's closure.
//  4. attempt to insert the result; on unique-key collision, re-read and
//     resolve the same way step 2 would.
//
// If key is the zero UUID, idempotency tracking is skipped entirely (spec
// §4.2 "An idempotency key is optional on requests; absence means 'do not
// track'") and the closure's result is returned as Executed without ever
// touching the repository.
func (e *Engine) ReserveOrReplay(ctx context.Context, key, userID uuid.UUID, kind domain.MutationType, payload any, execute Execute) (Outcome, error) {
	if key == uuid.Nil {
		result, err := execute(ctx)
		if err != nil {
			return Outcome{}, err
		}
		resp, err := json.Marshal(result)
		if err != nil {
			return Outcome{}, domain.Internal("marshaling response", err)
		}
		return Outcome{Kind: Executed, Response: resp}, nil
	}

	payloadHash, err := HashPayload(payload)
	if err != nil {
		return Outcome{}, domain.InvalidRequest("invalid request payload: %v", err)
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key, userID, kind); ok {
			return e.resolveExisting(cached, payloadHash, kind)
		}
	}

	existing, lookupErr := e.repo.Get(ctx, key, userID, kind)
	switch {
	case lookupErr == nil:
		if e.cache != nil {
			e.cache.Set(ctx, existing)
		}
		return e.resolveExisting(existing, payloadHash, kind)
	case isNotFound(lookupErr):
		// proceed to execute
	default:
		return Outcome{}, domain.FromPortError(lookupErr, "")
	}

	result, execErr := execute(ctx)
	if execErr != nil {
		return Outcome{}, execErr
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return Outcome{}, domain.Internal("marshaling response", err)
	}

	rec := domain.IdempotencyRecord{
		Key:              key,
		UserID:           userID,
		MutationType:     kind,
		PayloadHash:      payloadHash,
		ResponseSnapshot: responseJSON,
		CreatedAt:        time.Now().UTC(),
	}

	insertErr := e.repo.Insert(ctx, rec)
	if insertErr == nil {
		if e.cache != nil {
			e.cache.Set(ctx, rec)
		}
		e.count("executed", kind)
		return Outcome{Kind: Executed, Response: responseJSON}, nil
	}

	if !isConflictInsert(insertErr) {
		return Outcome{}, domain.FromPortError(insertErr, "")
	}

	// Concurrent insert raced us: re-read and resolve exactly as a lookup hit.
	reread, rereadErr := e.repo.Get(ctx, key, userID, kind)
	if rereadErr != nil {
		return Outcome{}, domain.FromPortError(rereadErr, "")
	}
	return e.resolveExisting(reread, payloadHash, kind)
}

func (e *Engine) resolveExisting(existing domain.IdempotencyRecord, payloadHash [32]byte, kind domain.MutationType) (Outcome, error) {
	if bytes.Equal(existing.PayloadHash[:], payloadHash[:]) {
		e.count("replayed", kind)
		return Outcome{Kind: Replayed, Response: existing.ResponseSnapshot}, nil
	}
	e.count("conflict", kind)
	return Outcome{Kind: Conflict}, nil
}

func (e *Engine) count(outcome string, kind domain.MutationType) {
	telemetry.IdempotencyOutcomesTotal.WithLabelValues(outcome, string(kind)).Inc()
}

func isNotFound(err error) bool {
	pe, ok := err.(*domain.PortError)
	return ok && pe.Kind == domain.PortNotFound
}

func isConflictInsert(err error) bool {
	pe, ok := err.(*domain.PortError)
	return ok && pe.Kind == domain.PortConflict
}

// CleanupOlderThan removes idempotency records older than ttl (spec §4.2
// step 5). It is safe to call concurrently with normal traffic; records
// occasionally outliving ttl are harmless.
func (e *Engine) CleanupOlderThan(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	n, err := e.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, domain.FromPortError(err, "")
	}
	if e.logger != nil && n > 0 {
		e.logger.Info("idempotency cleanup removed expired records", "count", n, "ttl", ttl)
	}
	return n, nil
}

// RunCleanupLoop runs CleanupOlderThan once immediately, then on every
// tick of interval, until ctx is cancelled.
func (e *Engine) RunCleanupLoop(ctx context.Context, ttl, interval time.Duration) {
	if _, err := e.CleanupOlderThan(ctx, ttl); err != nil && e.logger != nil {
		e.logger.Error("idempotency cleanup failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.CleanupOlderThan(ctx, ttl); err != nil && e.logger != nil {
				e.logger.Error("idempotency cleanup failed", "error", err)
			}
		}
	}
}
