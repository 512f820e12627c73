// Package enrichment implements the Overpass-style POI enrichment worker
// (spec §4.5) and the admin provenance-reporting HTTP handler.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
	"github.com/wisbric/waypoint/internal/telemetry"
)

// Fetch retrieves POIs within bounds from the upstream Overpass-style
// source. Implementations classify upstream failures with FetchError so
// the worker can apply spec §4.5's failure mapping.
type Fetch func(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error)

// FetchErrorKind distinguishes upstream failure classes (spec §4.5
// "Failure mapping").
type FetchErrorKind int

const (
	FetchErrorConnection FetchErrorKind = iota
	FetchErrorClient
	FetchErrorServer
)

// FetchError wraps an upstream fetch failure with its classification.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string { return e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// Config tunes the worker's concurrency, quota, breaker, and retry
// behaviour (spec §4.5 "Concurrency", "Circuit breaker", "Quota").
type Config struct {
	MaxConcurrentFetches int64
	QuotaPerWindow       rate.Limit
	QuotaBurst           int
	// BreakerMinRequests is the minimum number of requests in the current
	// interval before ReadyToTrip considers the failure ratio at all
	// (spec §4.5 "consecutive failures open the circuit").
	BreakerMinRequests  int
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64
	RetryMaxElapsed     time.Duration
}

// DefaultConfig returns conservative defaults suitable for a single-node
// deployment.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentFetches: 4,
		QuotaPerWindow:       rate.Limit(2), // 2 fetches/sec sustained
		QuotaBurst:           4,
		BreakerMinRequests:   3,
		BreakerMaxRequests:   1,
		BreakerInterval:      time.Minute,
		BreakerTimeout:       30 * time.Second,
		BreakerFailureRatio:  0.6,
		RetryMaxElapsed:      10 * time.Second,
	}
}

// Service runs enrichment jobs: fetch POIs for a bounding box, upsert them,
// and persist a provenance record. Admission is bounded by a semaphore, a
// circuit breaker short-circuits after repeated upstream failures, and a
// token-bucket quota gates the request rate ahead of both (spec §4.5).
type Service struct {
	pois        ports.POIRepository
	provenance  ports.EnrichmentProvenanceRepository
	fetch       Fetch
	sem         *semaphore.Weighted
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]domain.POI]
	retryMax    time.Duration
	logger      *slog.Logger
}

func NewService(pois ports.POIRepository, provenance ports.EnrichmentProvenanceRepository, fetch Fetch, cfg Config, logger *slog.Logger) *Service {
	breaker := gobreaker.NewCircuitBreaker[[]domain.POI](gobreaker.Settings{
		Name:        "enrichment-fetch",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.Requests) >= cfg.BreakerMinRequests && float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				telemetry.EnrichmentBreakerTripsTotal.Inc()
			}
			if logger != nil {
				logger.Info("enrichment circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	})

	return &Service{
		pois:       pois,
		provenance: provenance,
		fetch:      fetch,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrentFetches),
		limiter:    rate.NewLimiter(cfg.QuotaPerWindow, cfg.QuotaBurst),
		breaker:    breaker,
		retryMax:   cfg.RetryMaxElapsed,
		logger:     logger,
	}
}

// Run executes one enrichment job for the given source and bounding box,
// implementing the state machine Idle -> Fetching -> (Persisting ||
// PersistingProvenance) -> Succeeded | Failed (spec §4.5).
func (s *Service) Run(ctx context.Context, sourceURL string, bounds domain.BoundingBox) error {
	if err := bounds.Validate(); err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return err
	}

	if !s.limiter.Allow() {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return domain.ServiceUnavailable("enrichment quota exceeded", nil)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return domain.ServiceUnavailable("enrichment admission limit reached", err)
	}
	defer s.sem.Release(1)

	pois, err := s.fetchWithRetry(ctx, sourceURL, bounds)
	if err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return mapFetchError(err)
	}

	if err := s.pois.UpsertBatch(ctx, pois); err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return domain.FromPortError(err, "")
	}

	// Provenance failure fails the job even though POIs were already
	// persisted (spec §4.5: "auditability is mandatory").
	rec := domain.EnrichmentProvenanceRecord{
		ID:         uuid.New(),
		SourceURL:  sourceURL,
		ImportedAt: time.Now().UTC(),
		Bounds:     bounds,
	}
	if err := rec.Validate(); err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return err
	}
	if err := s.provenance.Insert(ctx, rec); err != nil {
		telemetry.EnrichmentJobsTotal.WithLabelValues("failed").Inc()
		return domain.FromPortError(err, "")
	}

	telemetry.EnrichmentJobsTotal.WithLabelValues("succeeded").Inc()
	return nil
}

func (s *Service) fetchWithRetry(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error) {
	result, err := s.breaker.Execute(func() ([]domain.POI, error) {
		var pois []domain.POI
		op := func() error {
			p, fetchErr := s.fetch(ctx, sourceURL, bounds)
			if fetchErr != nil {
				var fe *FetchError
				if errors.As(fetchErr, &fe) && fe.Kind == FetchErrorClient {
					return backoff.Permanent(fetchErr) // 4xx: retrying will not help
				}
				return fetchErr
			}
			pois = p
			return nil
		}
		bo := backoff.WithContext(boundedBackoff(s.retryMax), ctx)
		if err := backoff.Retry(op, bo); err != nil {
			return nil, err
		}
		return pois, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func boundedBackoff(maxElapsed time.Duration) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = maxElapsed
	return eb
}

func mapFetchError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ServiceUnavailable("enrichment circuit breaker open", err)
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		switch fe.Kind {
		case FetchErrorClient:
			return domain.InvalidRequest("upstream rejected request: %v", fe.Err)
		case FetchErrorServer:
			return domain.ServiceUnavailable("upstream enrichment source unavailable", fe.Err)
		default:
			return domain.ServiceUnavailable("enrichment source unreachable", fe.Err)
		}
	}
	return domain.Internal("enrichment fetch failed", err)
}

// ListProvenance backs GET /admin/enrichment/provenance (spec §4.6).
func (s *Service) ListProvenance(ctx context.Context, limit int, before *time.Time) ([]domain.EnrichmentProvenanceRecord, error) {
	records, err := s.provenance.ListRecent(ctx, limit, before)
	if err != nil {
		return nil, domain.FromPortError(err, "")
	}
	return records, nil
}
