package idempotency

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
)

// fakeRepo is a minimal in-memory ports.IdempotencyRepository used only to
// exercise Engine's state machine in isolation from any adapter.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]domain.IdempotencyRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]domain.IdempotencyRecord)}
}

func fakeKey(key, userID uuid.UUID, kind domain.MutationType) string {
	return key.String() + "|" + userID.String() + "|" + string(kind)
}

func (f *fakeRepo) Get(_ context.Context, key, userID uuid.UUID, kind domain.MutationType) (domain.IdempotencyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[fakeKey(key, userID, kind)]
	if !ok {
		return domain.IdempotencyRecord{}, domain.NewPortError(domain.PortNotFound, "not found", nil)
	}
	return rec, nil
}

func (f *fakeRepo) Insert(_ context.Context, rec domain.IdempotencyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(rec.Key, rec.UserID, rec.MutationType)
	if _, exists := f.records[k]; exists {
		return domain.NewPortError(domain.PortConflict, "already exists", nil)
	}
	f.records[k] = rec
	return nil
}

func (f *fakeRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, rec := range f.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(f.records, k)
			n++
		}
	}
	return n, nil
}

func TestReserveOrReplay_FirstCallExecutes(t *testing.T) {
	engine := NewEngine(newFakeRepo(), nil)
	key := uuid.New()
	userID := uuid.New()
	calls := 0

	outcome, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "hello"},
		func(ctx context.Context) (any, error) {
			calls++
			return map[string]any{"id": "note-1"}, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != Executed {
		t.Fatalf("expected Executed, got %v", outcome.Kind)
	}
	if calls != 1 {
		t.Fatalf("expected closure to run once, ran %d times", calls)
	}
}

func TestReserveOrReplay_SamePayloadReplays(t *testing.T) {
	engine := NewEngine(newFakeRepo(), nil)
	key := uuid.New()
	userID := uuid.New()
	calls := 0
	execute := func(ctx context.Context) (any, error) {
		calls++
		return map[string]any{"id": "note-1"}, nil
	}

	first, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "hello"}, execute)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "hello"}, execute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if second.Kind != Replayed {
		t.Fatalf("expected Replayed, got %v", second.Kind)
	}
	if string(second.Response) != string(first.Response) {
		t.Fatalf("replayed response should match original: %s vs %s", second.Response, first.Response)
	}
	if calls != 1 {
		t.Fatalf("closure should only run once, ran %d times", calls)
	}
}

func TestReserveOrReplay_DifferentPayloadConflicts(t *testing.T) {
	engine := NewEngine(newFakeRepo(), nil)
	key := uuid.New()
	userID := uuid.New()
	execute := func(ctx context.Context) (any, error) {
		return map[string]any{"id": "note-1"}, nil
	}

	_, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "hello"}, execute)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	outcome, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "different"}, execute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if outcome.Kind != Conflict {
		t.Fatalf("expected Conflict, got %v", outcome.Kind)
	}
}

func TestReserveOrReplay_NilKeySkipsTracking(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, nil)
	calls := 0

	outcome, err := engine.ReserveOrReplay(context.Background(), uuid.Nil, uuid.New(), domain.MutationType("notes"),
		map[string]any{"body": "hello"},
		func(ctx context.Context) (any, error) {
			calls++
			return map[string]any{"id": "note-1"}, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != Executed {
		t.Fatalf("expected Executed, got %v", outcome.Kind)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no records stored for untracked key, got %d", len(repo.records))
	}
	if calls != 1 {
		t.Fatalf("expected closure to run once, ran %d times", calls)
	}
}

func TestReserveOrReplay_ExecuteErrorNotStored(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, nil)
	key := uuid.New()
	userID := uuid.New()

	_, err := engine.ReserveOrReplay(context.Background(), key, userID, domain.MutationType("notes"),
		map[string]any{"body": "hello"},
		func(ctx context.Context) (any, error) {
			return nil, domain.InvalidRequest("bad body")
		})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if len(repo.records) != 0 {
		t.Fatalf("a failed execution must not be recorded, got %d records", len(repo.records))
	}
}

func TestCleanupOlderThan_RemovesExpired(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, nil)
	old := domain.IdempotencyRecord{
		Key: uuid.New(), UserID: uuid.New(), MutationType: domain.MutationType("notes"),
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := domain.IdempotencyRecord{
		Key: uuid.New(), UserID: uuid.New(), MutationType: domain.MutationType("notes"),
		CreatedAt: time.Now().UTC(),
	}
	_ = repo.Insert(context.Background(), old)
	_ = repo.Insert(context.Background(), fresh)

	n, err := engine.CleanupOlderThan(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record removed, got %d", n)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 record remaining, got %d", len(repo.records))
	}
}
