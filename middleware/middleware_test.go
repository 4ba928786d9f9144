package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"publishing-ops-api/auth"
	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type authFixture struct {
	router   *gin.Engine
	sessions *auth.SessionManager
	users    *repository.GormUserRepository
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := repository.NewUserRepository(testutil.NewDB(t))
	sessions := auth.NewSessionManager(config.AuthConfig{SessionSecret: "secret", SessionTTL: time.Hour}, nil)
	a := NewAuthenticator(sessions, users, discard)

	r := gin.New()
	r.GET("/api/v1/me", a.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	r.POST("/api/v1/admin/users", a.RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.GET("/admin", a.RequirePageAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return authFixture{router: r, sessions: sessions, users: users}
}

func (f authFixture) cookieFor(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), user))
	token, _, err := f.sessions.Issue(context.Background(), user)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func serve(r http.Handler, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRejectsMissingSession(t *testing.T) {
	f := newAuthFixture(t)

	w := serve(f.router, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = serve(f.router, http.MethodGet, "/api/v1/me", &http.Cookie{Name: auth.SessionCookie, Value: "junk"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthAcceptsSession(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.cookieFor(t, &models.User{Email: "ana@example.org", Role: models.RoleMember, Active: true})

	w := serve(f.router, http.MethodGet, "/api/v1/me", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"ana@example.org"}`, w.Body.String())
}

func TestRequireAuthRejectsDeactivatedUser(t *testing.T) {
	f := newAuthFixture(t)
	user := &models.User{Email: "ana@example.org", Role: models.RoleMember, Active: true}
	cookie := f.cookieFor(t, user)
	_, err := f.users.Update(context.Background(), user.ID, map[string]any{"active": false})
	require.NoError(t, err)

	w := serve(f.router, http.MethodGet, "/api/v1/me", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t)
	member := f.cookieFor(t, &models.User{Email: "member@example.org", Role: models.RoleMember, Active: true})
	admin := f.cookieFor(t, &models.User{Email: "admin@example.org", Role: models.RoleAdmin, Active: true})

	w := serve(f.router, http.MethodPost, "/api/v1/admin/users", member)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())

	w = serve(f.router, http.MethodPost, "/api/v1/admin/users", admin)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(f.router, http.MethodPost, "/api/v1/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePageAuthRedirects(t *testing.T) {
	f := newAuthFixture(t)

	w := serve(f.router, http.MethodGet, "/admin?tab=jobs", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/auth/login?next=%2Fadmin%3Ftab%3Djobs", w.Header().Get("Location"))
}

func TestCronSecret(t *testing.T) {
	calls := 0
	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.POST("/cron/digest", CronSecret(secret), func(c *gin.Context) {
			calls++
			c.Status(http.StatusOK)
		})
		return r
	}

	tests := []struct {
		name       string
		configured string
		header     string
		want       int
	}{
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong header", "s3cret", "nope", http.StatusUnauthorized},
		{"prefix only", "s3cret", "s3c", http.StatusUnauthorized},
		{"unconfigured secret", "", "", http.StatusUnauthorized},
		{"match", "s3cret", "s3cret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls = 0
			req := httptest.NewRequest(http.MethodPost, "/cron/digest", nil)
			if tc.header != "" {
				req.Header.Set(CronSecretHeader, tc.header)
			}
			w := httptest.NewRecorder()
			newRouter(tc.configured).ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
				assert.Zero(t, calls)
			} else {
				assert.Equal(t, 1, calls)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://ops.example.org"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://ops.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://ops.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalAuthExposesClaimsWithoutRejecting(t *testing.T) {
	f := newAuthFixture(t)
	a := NewAuthenticator(f.sessions, f.users, discard)
	r := gin.New()
	r.POST("/api/v1/auth/logout", a.OptionalAuth(), func(c *gin.Context) {
		claims := SessionClaims(c)
		if claims == nil {
			c.JSON(http.StatusOK, gin.H{"uid": 0})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": claims.UserID})
	})

	w := serve(r, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":0}`, w.Body.String())

	w = serve(r, http.MethodPost, "/api/v1/auth/logout", &http.Cookie{Name: auth.SessionCookie, Value: "junk"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":0}`, w.Body.String())

	user := &models.User{Email: "ana@example.org", Role: models.RoleMember, Active: true}
	cookie := f.cookieFor(t, user)
	w = serve(r, http.MethodPost, "/api/v1/auth/logout", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"uid":%d}`, user.ID), w.Body.String())
}
