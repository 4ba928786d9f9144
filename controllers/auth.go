package controllers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/auth"
	"publishing-ops-api/middleware"

	"github.com/gin-gonic/gin"
)

const (
	stateCookie = "ops_oauth_state"
	nonceCookie = "ops_oauth_nonce"
	nextCookie  = "ops_oauth_next"

	flowCookieMaxAge = 10 * 60
)

// Login starts the sign-in flow. ?next= is honored for same-site paths only.
func (h *Handlers) Login(c *gin.Context) {
	state, err := auth.RandomToken()
	if err != nil {
		h.respondError(c, apperrors.Internal("could not start sign-in", err))
		return
	}
	nonce, err := auth.RandomToken()
	if err != nil {
		h.respondError(c, apperrors.Internal("could not start sign-in", err))
		return
	}

	h.setFlowCookie(c, stateCookie, state)
	h.setFlowCookie(c, nonceCookie, nonce)
	h.setFlowCookie(c, nextCookie, safeNext(c.Query("next")))
	c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state, nonce))
}

// Callback completes the sign-in flow and sets the session cookie.
func (h *Handlers) Callback(c *gin.Context) {
	state, _ := c.Cookie(stateCookie)
	nonce, _ := c.Cookie(nonceCookie)
	next, _ := c.Cookie(nextCookie)
	for _, name := range []string{stateCookie, nonceCookie, nextCookie} {
		h.setFlowCookie(c, name, "")
	}

	if errParam := c.Query("error"); errParam != "" {
		h.respondError(c, apperrors.Unauthorized("sign-in was cancelled: "+errParam))
		return
	}
	got := c.Query("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(got)) != 1 {
		h.respondError(c, apperrors.Unauthorized("invalid sign-in state"))
		return
	}

	identity, err := h.Provider.Exchange(c.Request.Context(), c.Query("code"), nonce)
	if err != nil {
		h.Logger.Warn("sign-in exchange failed", slog.String("error", err.Error()))
		h.respondError(c, apperrors.Unauthorized("sign-in failed"))
		return
	}
	user, err := h.SignIn.Complete(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, _, err := h.Sessions.Issue(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, apperrors.Internal("could not create session", err))
		return
	}
	h.Sessions.SetCookie(c, token)
	h.Logger.Info("user signed in", slog.Uint64("user_id", uint64(user.ID)), slog.String("email", user.Email))
	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout revokes the session when possible and always clears the cookie.
func (h *Handlers) Logout(c *gin.Context) {
	if claims := middleware.SessionClaims(c); claims != nil {
		if err := h.Sessions.Revoke(c.Request.Context(), claims); err != nil {
			h.Logger.Warn("session revoke failed", slog.String("error", err.Error()))
		}
	}
	h.Sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": middleware.CurrentUser(c)})
}

func (h *Handlers) setFlowCookie(c *gin.Context, name, value string) {
	maxAge := flowCookieMaxAge
	if value == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/api/v1/auth", "", h.Sessions.Secure(), true)
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
