// Package auth implements sign-in and cookie sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"publishing-ops-api/config"
	"publishing-ops-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookie = "ops_session"
	issuer        = "publishing-ops-api"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrRevoked        = errors.New("session revoked")
)

// Claims is the signed session payload.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	store  SessionStore
	now    func() time.Time
}

func NewSessionManager(cfg config.AuthConfig, store SessionStore) *SessionManager {
	if store == nil {
		store = NoopSessionStore{}
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		secret: []byte(cfg.SessionSecret),
		ttl:    ttl,
		secure: cfg.CookieSecure,
		store:  store,
		now:    time.Now,
	}
}

// Issue signs a new session for user and registers it with the store.
func (m *SessionManager) Issue(ctx context.Context, user *models.User) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		SessionID: uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	if err := m.store.Save(ctx, claims.SessionID, user.ID, m.ttl); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	return token, claims, nil
}

// Parse validates the token signature, expiry and revocation state.
func (m *SessionManager) Parse(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	active, err := m.store.Active(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !active {
		return nil, ErrRevoked
	}
	return claims, nil
}

func (m *SessionManager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return nil
	}
	return m.store.Revoke(ctx, claims.SessionID)
}

func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secure, true)
}

// Secure reports whether cookies carry the Secure flag.
func (m *SessionManager) Secure() bool { return m.secure }
