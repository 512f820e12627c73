package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// IdempotencyKeyHeader is the header carrying an optional idempotency key
// (spec §4.7, §6): "Idempotency-Key: ...". Absence means "do not track".
const IdempotencyKeyHeader = "Idempotency-Key"

// ParseIdempotencyKey reads the Idempotency-Key header. A missing header
// returns uuid.Nil (the idempotency engine's "do not track" sentinel); a
// present but malformed value is a 400 per spec §4.7.
func ParseIdempotencyKey(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(IdempotencyKeyHeader)
	if raw == "" {
		return uuid.Nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", IdempotencyKeyHeader)
	}
	return key, nil
}
