package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// IdempotencyStore implements ports.IdempotencyRepository over the
// idempotency_keys table, keyed by the composite (key, user_id,
// mutation_type) per spec §4.2.
type IdempotencyStore struct {
	dbtx db.DBTX
}

func NewIdempotencyStore(dbtx db.DBTX) *IdempotencyStore {
	return &IdempotencyStore{dbtx: dbtx}
}

func (s *IdempotencyStore) Get(ctx context.Context, key, userID uuid.UUID, kind domain.MutationType) (domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	var payloadHash []byte
	err := s.dbtx.QueryRow(ctx, `
		SELECT key, user_id, mutation_type, payload_hash, response_snapshot, created_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2 AND mutation_type = $3
	`, key, userID, kind).Scan(&rec.Key, &rec.UserID, &rec.MutationType, &payloadHash, &rec.ResponseSnapshot, &rec.CreatedAt)
	if err != nil {
		return domain.IdempotencyRecord{}, mapError(err, "idempotency record not found")
	}
	copy(rec.PayloadHash[:], payloadHash)
	return rec, nil
}

func (s *IdempotencyStore) Insert(ctx context.Context, rec domain.IdempotencyRecord) error {
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO idempotency_keys (key, user_id, mutation_type, payload_hash, response_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.Key, rec.UserID, rec.MutationType, rec.PayloadHash[:], rec.ResponseSnapshot, rec.CreatedAt)
	if err != nil {
		return mapError(err, "")
	}
	return nil
}

func (s *IdempotencyStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.dbtx.Exec(ctx, `
		DELETE FROM idempotency_keys WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, mapError(err, "")
	}
	return tag.RowsAffected(), nil
}
