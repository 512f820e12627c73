package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/wisbric/waypoint/internal/domain"
	"github.com/wisbric/waypoint/internal/ports"
)

// LoginRequest is the JSON body for POST /api/v1/login (spec §6).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse echoes the public identity fields of the now-authenticated
// user alongside the session cookie set on the response.
type LoginResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// LoginHandler authenticates local username/password credentials and
// issues a session cookie, trimmed to waypoint's single-tenant, cookie-only
// session model.
type LoginHandler struct {
	sessionMgr *SessionManager
	users      ports.UserRepository
	logger     *slog.Logger
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(sessionMgr *SessionManager, users ports.UserRepository, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{sessionMgr: sessionMgr, users: users, logger: logger}
}

// HandleLogin authenticates a user with username/password and sets the
// session cookie on success.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidRequest("invalid JSON body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, domain.InvalidRequest("username and password are required"))
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		h.logger.Warn("login: user lookup failed", "username", req.Username)
		respondError(w, domain.Unauthorized("invalid username or password"))
		return
	}

	if user.PasswordHash == "" {
		respondError(w, domain.Unauthorized("invalid username or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, domain.Unauthorized("invalid username or password"))
		return
	}

	if err := h.sessionMgr.IssueCookie(w, Claims{UserID: user.ID.String(), DisplayName: user.DisplayName}); err != nil {
		h.logger.Error("login: issuing session cookie", "error", err)
		respondError(w, domain.Internal("failed to issue session", err))
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{UserID: user.ID.String(), DisplayName: user.DisplayName})
}

// HandleLogout clears the session cookie.
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	h.sessionMgr.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes the standard error envelope (spec §6: {code, message,
// traceId}). traceId is read from the X-Request-ID response header that
// httpserver.RequestID sets before this handler runs (auth cannot import
// httpserver, which imports auth).
func respondError(w http.ResponseWriter, err *domain.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    err.Code(),
		"message": err.Message,
		"traceId": w.Header().Get("X-Request-ID"),
	})
}
