package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"publishing-ops-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagazineIssueAndItems(t *testing.T) {
	s := newServer(t, nil)
	_, cookie := s.login(t, "ana@example.org", models.RoleMember)
	cookies := []*http.Cookie{cookie}

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/magazine/issues", cookies: cookies,
		body: map[string]any{"title": "Winter 2026", "volume": 4, "number": 1}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	issue := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "planning", issue["status"])
	itemsPath := fmt.Sprintf("/api/v1/magazine/issues/%v/items", issue["id"])

	var ids []any
	for _, title := range []string{"Cover story", "Poetry corner"} {
		w = s.do(t, call{method: http.MethodPost, path: itemsPath, cookies: cookies, body: map[string]any{"title": title, "word_count": 1200}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decode(t, w)["data"].(map[string]any)["id"])
	}

	w = s.do(t, call{method: http.MethodPut, path: itemsPath + "/order", cookies: cookies, body: map[string]any{"ids": []any{ids[1], ids[0]}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodGet, path: itemsPath, cookies: cookies})
	items := decode(t, w)["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Poetry corner", items[0].(map[string]any)["title"])

	itemPath := fmt.Sprintf("/api/v1/magazine/items/%v", ids[0])
	w = s.do(t, call{method: http.MethodPatch, path: itemPath, cookies: cookies, body: map[string]any{"status": "final", "issue_id": 999}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "final", item["status"])
	assert.Equal(t, issue["id"], item["issue_id"])
	assert.NotEmpty(t, item["completed_at"])

	w = s.do(t, call{method: http.MethodPatch, path: itemPath, cookies: cookies, body: map[string]any{"status": "edited"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w)["data"], "completed_at")

	w = s.do(t, call{method: http.MethodPatch, path: itemPath, cookies: cookies, body: map[string]any{"status": "printed"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, call{method: http.MethodDelete, path: fmt.Sprintf("/api/v1/magazine/issues/%v", issue["id"]), cookies: cookies})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, s.count(t, &models.MagazineItem{}))

	w = s.do(t, call{method: http.MethodGet, path: itemsPath, cookies: cookies})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorsSearchAfterSync(t *testing.T) {
	s := newServer(t, authorRows)
	_, cookie := s.login(t, "ana@example.org", models.RoleMember)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/cron/directory-sync", header: map[string]string{"x-cron-secret": cronSecret}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/authors?q=waco", cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(20), body["limit"])
	authors := body["data"].([]any)
	require.Len(t, authors, 1)
	assert.Equal(t, "Bob Roe", authors[0].(map[string]any)["full_name"])

	w = s.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/v1/authors/%v", authors[0].(map[string]any)["id"]), cookies: []*http.Cookie{cookie}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/authors/9999", cookies: []*http.Cookie{cookie}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
