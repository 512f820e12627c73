// Package routeplan implements the route submission driving service (spec
// §4.4 "Route submission") and its HTTP handler.
package routeplan

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/idempotency"
	"github.com/wisbric/waypoint/internal/ports"
	"github.com/wisbric/waypoint/internal/telemetry"
)

type Service struct {
	repo   ports.RouteRepository
	idem   *idempotency.Engine
	logger *slog.Logger
}

func NewService(repo ports.RouteRepository, idem *idempotency.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, idem: idem, logger: logger}
}

// Status is the closed set of outcomes a route submission reports back to
// the client (spec §4.4: "status ∈ {Accepted, Replayed}").
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusReplayed Status = "replayed"
)

type SubmitInput struct {
	UserID         uuid.UUID
	IdempotencyKey uuid.UUID
	Payload        json.RawMessage
}

type SubmitResult struct {
	RequestID uuid.UUID
	Status    Status
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	var rawPayload any
	if err := json.Unmarshal(in.Payload, &rawPayload); err != nil {
		return SubmitResult{}, domain.InvalidRequest("route request payload must be valid JSON")
	}

	outcome, err := s.idem.ReserveOrReplay(ctx, in.IdempotencyKey, in.UserID, domain.MutationRoutes, rawPayload,
		func(ctx context.Context) (any, error) {
			return s.create(ctx, in)
		})
	if err != nil {
		telemetry.RouteSubmissionsTotal.WithLabelValues("failed").Inc()
		return SubmitResult{}, err
	}
	switch outcome.Kind {
	case idempotency.Conflict:
		telemetry.RouteSubmissionsTotal.WithLabelValues("conflict").Inc()
		return SubmitResult{}, domain.Conflict("idempotency key reused with a different payload")
	case idempotency.Replayed:
		var result SubmitResult
		if err := json.Unmarshal(outcome.Response, &result); err != nil {
			telemetry.RouteSubmissionsTotal.WithLabelValues("failed").Inc()
			return SubmitResult{}, domain.Internal("decoding stored response", err)
		}
		result.Status = StatusReplayed
		telemetry.RouteSubmissionsTotal.WithLabelValues("replayed").Inc()
		return result, nil
	default:
		var result SubmitResult
		if err := json.Unmarshal(outcome.Response, &result); err != nil {
			telemetry.RouteSubmissionsTotal.WithLabelValues("failed").Inc()
			return SubmitResult{}, domain.Internal("decoding stored response", err)
		}
		telemetry.RouteSubmissionsTotal.WithLabelValues("accepted").Inc()
		return result, nil
	}
}

func (s *Service) create(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	route := domain.Route{
		ID:       uuid.New(),
		UserID:   in.UserID,
		PlanJSON: in.Payload,
	}
	stored, err := s.repo.Create(ctx, route)
	if err != nil {
		return SubmitResult{}, domain.FromPortError(err, "")
	}
	return SubmitResult{RequestID: stored.ID, Status: StatusAccepted}, nil
}
