package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
	kind   domain.MutationType
}

// IdempotencyStore implements ports.IdempotencyRepository.
type IdempotencyStore struct {
	mu
	records map[idemKey]domain.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: make(map[idemKey]domain.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(_ context.Context, key, userID uuid.UUID, kind domain.MutationType) (domain.IdempotencyRecord, error) {
	s.Lock()
	defer s.Unlock()
	rec, ok := s.records[idemKey{key, userID, kind}]
	if !ok {
		return domain.IdempotencyRecord{}, domain.NewPortError(domain.PortNotFound, "idempotency record not found", nil)
	}
	return rec, nil
}

func (s *IdempotencyStore) Insert(_ context.Context, rec domain.IdempotencyRecord) error {
	s.Lock()
	defer s.Unlock()
	k := idemKey{rec.Key, rec.UserID, rec.MutationType}
	if _, exists := s.records[k]; exists {
		return domain.NewPortError(domain.PortConflict, "idempotency key already reserved", nil)
	}
	s.records[k] = rec
	return nil
}

func (s *IdempotencyStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.Lock()
	defer s.Unlock()
	var n int64
	for k, rec := range s.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}
