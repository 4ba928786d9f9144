package controllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"publishing-ops-api/models"
	"publishing-ops-api/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authorRows = [][]string{
	{"Author ID", "Full Name", "Email", "City"},
	{"A-1", "Ann Doe", "ann@example.org", "Austin"},
	{"A-2", "Bob Roe", "bob@example.org", "Waco"},
}

func TestCronRejectsMissingSecretWithoutRunning(t *testing.T) {
	s := newServer(t, authorRows)
	s.seedOverdueOwners(t, 2)

	for _, header := range []map[string]string{nil, {"x-cron-secret": "wrong"}} {
		w := s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/digest", header: header})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}

	assert.Zero(t, s.count(t, &models.JobRunLog{}))
	assert.Zero(t, s.mailer.count())
}

func TestCronDigestEndToEnd(t *testing.T) {
	s := newServer(t, authorRows)
	s.seedOverdueOwners(t, 12)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/digest", header: map[string]string{"x-cron-secret": cronSecret}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(12), body["sent"])
	assert.Equal(t, map[string]any{"users": float64(12), "skipped": float64(0), "failed": float64(0), "openItems": float64(12)}, body["summary"])
	assert.Contains(t, body, "durationMs")
	assert.Equal(t, 12, s.mailer.count())

	var logs []models.JobRunLog
	require.NoError(t, s.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, services.JobDigest, logs[0].JobName)
	assert.Equal(t, models.RunLogStatusSuccess, logs[0].Status)
	assert.Equal(t, services.TriggerCron, logs[0].Trigger)
	assert.Equal(t, float64(12), logs[0].Result["sent"])
	assert.Nil(t, logs[0].Error)
}

func TestDirectorySyncTwiceIsRateLimited(t *testing.T) {
	s := newServer(t, authorRows)
	cron := map[string]string{"x-cron-secret": cronSecret}

	first := s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/directory-sync", header: cron})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, float64(2), decode(t, first)["created"])
	assert.Equal(t, int64(2), s.count(t, &models.TexasAuthor{}))

	second := s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/directory-sync", header: cron})
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	body := decode(t, second)
	assert.Equal(t, false, body["ok"])
	wait, ok := body["retryAfterSeconds"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 300, wait, 1)

	header, err := strconv.Atoi(second.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Equal(t, int(wait), header)

	// Both invocations are logged; only the first produced a sync run.
	assert.Equal(t, int64(2), s.count(t, &models.JobRunLog{}))
	assert.Equal(t, int64(1), s.count(t, &models.SyncRun{}))
}

func TestManualSyncIsAdminOnlyAndSharesCooldown(t *testing.T) {
	s := newServer(t, authorRows)
	_, member := s.login(t, "member@example.org", models.RoleMember)
	_, admin := s.login(t, "boss@example.org", models.RoleAdmin)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/authors/sync", cookies: []*http.Cookie{member}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, s.count(t, &models.JobRunLog{}))

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/authors/sync", cookies: []*http.Cookie{admin}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entry models.JobRunLog
	require.NoError(t, s.db.First(&entry).Error)
	assert.Equal(t, services.TriggerManual, entry.Trigger)

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/directory-sync", header: map[string]string{"x-cron-secret": cronSecret}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
