package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"publishing-ops-api/config"
	"publishing-ops-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]uint
}

func newMemoryStore() *memoryStore { return &memoryStore{sessions: map[string]uint{}} }

func (s *memoryStore) Save(_ context.Context, sid string, userID uint, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = userID
	return nil
}

func (s *memoryStore) Active(_ context.Context, sid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sid]
	return ok, nil
}

func (s *memoryStore) Revoke(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func newTestManager(store SessionStore) *SessionManager {
	return NewSessionManager(config.AuthConfig{SessionSecret: "test-secret", SessionTTL: time.Hour}, store)
}

var testUser = &models.User{ID: 7, Email: "ana@example.org", Role: models.RoleAdmin, Active: true}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(newMemoryStore())
	ctx := context.Background()

	token, issued, err := m.Issue(ctx, testUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, claims.SessionID)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ana@example.org", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := newTestManager(newMemoryStore())
	ctx := context.Background()
	token, _, err := m.Issue(ctx, testUser)
	require.NoError(t, err)

	other := NewSessionManager(config.AuthConfig{SessionSecret: "another-secret"}, nil)
	otherToken, _, err := other.Issue(ctx, testUser)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"tampered", token[:len(token)-2] + "xx"},
		{"wrong secret", otherToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Parse(ctx, tc.token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager(newMemoryStore())
	ctx := context.Background()
	start := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	token, _, err := m.Issue(ctx, testUser)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevokedSessionIsRejected(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	ctx := context.Background()

	token, claims, err := m.Issue(ctx, testUser)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, claims))

	_, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestNoopStoreNeverRevokes(t *testing.T) {
	m := newTestManager(NoopSessionStore{})
	ctx := context.Background()

	token, claims, err := m.Issue(ctx, testUser)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, claims))

	_, err = m.Parse(ctx, token)
	assert.NoError(t, err)
}
