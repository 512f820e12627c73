package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Middleware authenticates every request via the session cookie, silently
// refreshing it when it falls inside the refresh window, and stores the
// resulting Identity in the request context (spec §4.7, §4.1). Unlike a
// multi-method cascade (session → OIDC → API key → dev header), waypoint
// authenticates browsers exclusively through the session cookie — there
// are no machine-to-machine or admin-console callers in scope.
func Middleware(sessionMgr *SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionMgr.ValidateCookie(r)
			if err != nil {
				logger.Debug("session validation failed", "error", err)
				respondUnauthorized(w, "authentication required")
				return
			}

			userID, err := claims.UserUUID()
			if err != nil {
				logger.Warn("session carried an invalid user id", "error", err)
				respondUnauthorized(w, "authentication required")
				return
			}

			if refreshErr := sessionMgr.RefreshCookie(w, r); refreshErr != nil {
				logger.Debug("session refresh skipped", "error", refreshErr)
			}

			identity := &Identity{UserID: userID, DisplayName: claims.DisplayName}
			ctx := NewContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "unauthorized",
		"message": message,
		"traceId": w.Header().Get("X-Request-ID"),
	})
}
