// Package httpserver is the inbound HTTP adapter: router assembly,
// middleware, the standard response envelope, DTO decode/validate, and
// pagination helpers (spec §4.7), using waypoint's error envelope and
// camelCase wire format.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wisbric/waypoint/internal/domain"
)

// TimeFormat is the RFC 3339 layout every timestamp field in a response
// body uses (spec §6 "Snapshots include top-level generatedAt (RFC 3339)").
const TimeFormat = time.RFC3339

// Respond writes a JSON response with the given status code.
func Respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}

// ErrorResponse is the standard JSON error envelope (spec §6):
// {"code":..., "message":..., "traceId":...}.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"traceId"`
}

// RespondError maps a domain error to its HTTP status and writes the
// standard envelope, filling traceId from the request context (set by the
// RequestID middleware).
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	domErr, ok := domain.AsError(err)
	if !ok {
		domErr = domain.Internal("internal error", err)
	}
	Respond(w, domErr.HTTPStatus(), ErrorResponse{
		Code:    domErr.Code(),
		Message: domErr.Message,
		TraceID: RequestIDFromContext(r.Context()),
	})
}
