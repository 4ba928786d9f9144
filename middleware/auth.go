package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"publishing-ops-api/auth"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"

	"github.com/gin-gonic/gin"
)

const (
	currentUserKey = "currentUser"
	claimsKey      = "sessionClaims"

	loginPath = "/api/v1/auth/login"
)

// Authenticator resolves the session cookie to an active user.
type Authenticator struct {
	sessions *auth.SessionManager
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewAuthenticator(sessions *auth.SessionManager, users repository.UserRepository, logger *slog.Logger) *Authenticator {
	return &Authenticator{sessions: sessions, users: users, logger: logger}
}

// RequireAuth rejects API requests without a valid session with 401.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequirePageAuth redirects browsers without a valid session to sign-in,
// returning them to the requested page afterwards.
func (a *Authenticator) RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, loginPath+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth loads the session when one is present and never rejects.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.authenticate(c)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) bool {
	raw, err := c.Cookie(auth.SessionCookie)
	if err != nil || raw == "" {
		return false
	}
	claims, err := a.sessions.Parse(c.Request.Context(), raw)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) && !errors.Is(err, auth.ErrRevoked) {
			a.logger.Warn("session check failed", slog.String("error", err.Error()))
		}
		return false
	}

	// Role and active flag come from the database so changes apply immediately.
	user, err := a.users.Get(c.Request.Context(), claims.UserID)
	if err != nil || !user.Active {
		return false
	}
	c.Set(currentUserKey, user)
	c.Set(claimsKey, claims)
	return true
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SessionClaims returns the parsed session token, or nil when the request
// carried no valid session.
func SessionClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
