// Package memory implements every driven port in internal/ports over
// plain in-process maps; each store with mutable state is guarded by its
// own mutex. It backs the
// in-memory fixture startup mode (spec §4.8, §9): no DATABASE_URL means
// the composition root wires these instead of internal/adapters/postgres,
// with identical port contracts on both sides.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// clock lets tests override "now" without reaching for a flaky real clock.
type clock func() time.Time

func realClock() time.Time { return time.Now().UTC() }

// mu is embedded by every store in this package that holds mutable state,
// for a uniform lock shape (SchemaStore is immutable and has none).
type mu struct {
	sync.Mutex
}

func newID() uuid.UUID { return uuid.New() }
