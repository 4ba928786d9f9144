package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"publishing-ops-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminEndpointsForbidMembersWithoutMutation(t *testing.T) {
	s := newServer(t, nil)
	_, member := s.login(t, "member@example.org", models.RoleMember)
	before := s.count(t, &models.User{})

	tests := []call{
		{method: http.MethodGet, path: "/api/v1/admin/users"},
		{method: http.MethodPost, path: "/api/v1/admin/users", body: map[string]any{"email": "new@example.org"}},
		{method: http.MethodPatch, path: "/api/v1/admin/users/1", body: map[string]any{"role": "admin"}},
		{method: http.MethodPost, path: "/api/v1/admin/recurring-deadlines", body: map[string]any{"title": "Weekly", "cadence": "weekly"}},
		{method: http.MethodGet, path: "/api/v1/admin/health"},
		{method: http.MethodGet, path: "/api/v1/admin/job-runs"},
		{method: http.MethodGet, path: "/api/v1/admin/audit"},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			tc.cookies = []*http.Cookie{member}
			w := s.do(t, tc)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
		})
	}

	assert.Equal(t, before, s.count(t, &models.User{}))
	assert.Zero(t, s.count(t, &models.RecurringDeadline{}))
	assert.Zero(t, s.count(t, &models.AuditEvent{}))

	var self models.User
	require.NoError(t, s.db.First(&self, "email = ?", "member@example.org").Error)
	assert.Equal(t, models.RoleMember, self.Role)
}

func TestAdminCreatesUserAndAudits(t *testing.T) {
	s := newServer(t, nil)
	boss, admin := s.login(t, "boss@example.org", models.RoleAdmin)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/users", cookies: []*http.Cookie{admin},
		body: map[string]any{"email": " New.Editor@Example.org ", "name": "New Editor"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "new.editor@example.org", created["email"])
	assert.Equal(t, models.RoleMember, created["role"])
	assert.Equal(t, true, created["active"])

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/users", cookies: []*http.Cookie{admin},
		body: map[string]any{"email": "new.editor@example.org"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/users", cookies: []*http.Cookie{admin},
		body: map[string]any{"email": "not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var events []models.AuditEvent
	require.NoError(t, s.db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, boss.ID, events[0].ActorID)
	assert.Equal(t, models.AuditActionCreate, events[0].Action)
	assert.Equal(t, "user", events[0].Entity)

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/audit", cookies: []*http.Cookie{admin}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestAdminCannotDemoteSelf(t *testing.T) {
	s := newServer(t, nil)
	boss, admin := s.login(t, "boss@example.org", models.RoleAdmin)
	path := fmt.Sprintf("/api/v1/admin/users/%d", boss.ID)

	w := s.do(t, call{method: http.MethodPatch, path: path, cookies: []*http.Cookie{admin}, body: map[string]any{"role": "member"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, call{method: http.MethodPatch, path: path, cookies: []*http.Cookie{admin}, body: map[string]any{"active": false}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: http.MethodPatch, path: path, cookies: []*http.Cookie{admin}, body: map[string]any{"name": "The Boss"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "The Boss", decode(t, w)["data"].(map[string]any)["name"])
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newServer(t, nil)
	_, admin := s.login(t, "boss@example.org", models.RoleAdmin)
	member, memberCookie := s.login(t, "member@example.org", models.RoleMember)

	w := s.do(t, call{method: http.MethodPatch, path: fmt.Sprintf("/api/v1/admin/users/%d", member.ID),
		cookies: []*http.Cookie{admin}, body: map[string]any{"active": false}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/me", cookies: []*http.Cookie{memberCookie}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecurringDeadlineCRUDAndHealth(t *testing.T) {
	s := newServer(t, nil)
	_, admin := s.login(t, "boss@example.org", models.RoleAdmin)
	cookies := []*http.Cookie{admin}

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/recurring-deadlines", cookies: cookies,
		body: map[string]any{"title": "Newsletter copy", "cadence": "weekly", "weekday": 1, "lead_days": 2}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deadline := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, true, deadline["active"])
	path := fmt.Sprintf("/api/v1/admin/recurring-deadlines/%v", deadline["id"])

	w = s.do(t, call{method: http.MethodPatch, path: path, cookies: cookies, body: map[string]any{"weekday": 9}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: http.MethodPatch, path: path, cookies: cookies, body: map[string]any{"active": false}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["data"].(map[string]any)["active"])

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/deadlines", header: map[string]string{"x-cron-secret": cronSecret}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["created"])

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/health", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)["data"].(map[string]any)
	jobs := report["jobs"].([]any)
	require.Len(t, jobs, 4)
	byName := map[string]any{}
	for _, j := range jobs {
		entry := j.(map[string]any)
		byName[entry["name"].(string)] = entry["last_run"]
	}
	assert.NotNil(t, byName["deadlines"])
	assert.Nil(t, byName["digest"])

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/job-runs?job=deadlines", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = s.do(t, call{method: http.MethodDelete, path: path, cookies: cookies})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(3), s.count(t, &models.AuditEvent{}))
}
