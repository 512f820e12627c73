// Package auth implements session-authenticated HTTP for waypoint: a
// self-issued HMAC-signed JWT carried in an HttpOnly cookie, with silent
// refresh inside a configurable window (spec §4.7, SPEC_FULL.md §2 ambient
// stack), using go-jose for signing.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
)

// CookieName is the session cookie used by every waypoint HTTP surface.
const CookieName = "waypoint_session"

// Claims are the claims embedded in a self-issued session JWT.
type Claims struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// SessionManager issues and validates self-signed session JWTs using
// HMAC-SHA256, and owns the cookie's Secure/SameSite policy.
type SessionManager struct {
	signingKey    []byte
	maxAge        time.Duration
	refreshWindow time.Duration
	secureCookie  bool
	sameSite      http.SameSite
}

// Config controls cookie issuance policy. CookieSecure should be true in
// every environment except local HTTP development; SameSite defaults to
// Lax when zero-valued.
type Config struct {
	SigningKey    string
	MaxAge        time.Duration
	RefreshWindow time.Duration
	CookieSecure  bool
	SameSite      http.SameSite
}

// NewSessionManager creates a session manager. The signing key must be at
// least 32 bytes, matching spec's startup-validation requirement that
// session key length be checked eagerly.
func NewSessionManager(cfg Config) (*SessionManager, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, fmt.Errorf("session signing key must be at least 32 bytes, got %d", len(cfg.SigningKey))
	}
	sameSite := cfg.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	return &SessionManager{
		signingKey:    []byte(cfg.SigningKey),
		maxAge:        cfg.MaxAge,
		refreshWindow: cfg.RefreshWindow,
		secureCookie:  cfg.CookieSecure,
		sameSite:      sameSite,
	}, nil
}

// GenerateDevSecret generates a random 32-byte hex-encoded secret, for use
// only when no signing key is configured in a non-release build.
func GenerateDevSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}

func (sm *SessionManager) signer() (jose.Signer, error) {
	return jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: sm.signingKey},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
}

// IssueToken creates a signed JWT carrying claims.
func (sm *SessionManager) IssueToken(claims Claims) (string, error) {
	signer, err := sm.signer()
	if err != nil {
		return "", fmt.Errorf("creating signer: %w", err)
	}

	now := time.Now()
	registered := jwt.Claims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(sm.maxAge)),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "waypoint",
	}

	token, err := jwt.Signed(signer).Claims(registered).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// ValidateToken verifies the JWT signature, expiry, and issuer.
func (sm *SessionManager) ValidateToken(raw string) (*Claims, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	var registered jwt.Claims
	var custom Claims
	if err := tok.Claims(sm.signingKey, &registered, &custom); err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}

	if err := registered.ValidateWithLeeway(jwt.Expected{
		Issuer: "waypoint",
		Time:   time.Now(),
	}, 5*time.Second); err != nil {
		return nil, fmt.Errorf("validating claims: %w", err)
	}

	return &custom, nil
}

func (sm *SessionManager) cookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secureCookie,
		SameSite: sm.sameSite,
		MaxAge:   maxAge,
	}
}

// IssueCookie signs a JWT for claims and sets it as the session cookie.
func (sm *SessionManager) IssueCookie(w http.ResponseWriter, claims Claims) error {
	token, err := sm.IssueToken(claims)
	if err != nil {
		return err
	}
	http.SetCookie(w, sm.cookie(token, int(sm.maxAge.Seconds())))
	return nil
}

// ValidateCookie reads and validates the session cookie from the request.
func (sm *SessionManager) ValidateCookie(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, fmt.Errorf("reading cookie: %w", err)
	}
	return sm.ValidateToken(cookie.Value)
}

// ShouldRefresh reports whether raw's expiry falls inside the refresh
// window and a silent re-issue should happen.
func (sm *SessionManager) ShouldRefresh(raw string) bool {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return false
	}
	var registered jwt.Claims
	if err := tok.Claims(sm.signingKey, &registered); err != nil {
		return false
	}
	if registered.Expiry == nil {
		return false
	}
	return time.Until(registered.Expiry.Time()) < sm.refreshWindow
}

// RefreshCookie validates the session cookie and silently re-issues it if
// it falls inside the refresh window.
func (sm *SessionManager) RefreshCookie(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fmt.Errorf("reading cookie: %w", err)
	}

	claims, err := sm.ValidateToken(cookie.Value)
	if err != nil {
		return fmt.Errorf("validating token: %w", err)
	}

	if sm.ShouldRefresh(cookie.Value) {
		return sm.IssueCookie(w, *claims)
	}
	return nil
}

// ClearCookie removes the session cookie (logout).
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

// ValidatePolicy fails fast at startup if the cookie policy is unsafe for a
// release build: Secure must be true and SameSite must not be None.
func (sm *SessionManager) ValidatePolicy(isRelease bool) error {
	if !isRelease {
		return nil
	}
	if !sm.secureCookie {
		return fmt.Errorf("session cookie must be Secure in a release build")
	}
	if sm.sameSite == http.SameSiteNoneMode {
		return fmt.Errorf("session cookie SameSite=None is not permitted in a release build")
	}
	return nil
}

// UserUUID parses claims.UserID into a uuid.UUID.
func (c Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
