package auth

import (
	"context"
	"testing"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AllowedEmails:  []string{"guest@gmail.com"},
		AllowedDomains: []string{"example.org"},
		AdminEmails:    []string{"boss@elsewhere.net"},
	}
}

func TestAllowList(t *testing.T) {
	allow := NewAllowList(testAuthConfig())

	tests := []struct {
		email   string
		allowed bool
		admin   bool
	}{
		{"ana@example.org", true, false},
		{"  ANA@Example.org ", true, false},
		{"guest@gmail.com", true, false},
		{"other@gmail.com", false, false},
		{"boss@elsewhere.net", true, true},
		{"ana@sub.example.org", false, false},
		{"", false, false},
		{"no-at-sign", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			assert.Equal(t, tc.allowed, allow.Allowed(tc.email))
			assert.Equal(t, tc.admin, allow.IsAdmin(tc.email))
		})
	}
}

func TestSignInCreatesUserOnFirstLogin(t *testing.T) {
	users := repository.NewUserRepository(testutil.NewDB(t))
	s := NewSignIn(users, testAuthConfig())
	ctx := context.Background()

	user, err := s.Complete(ctx, Identity{Email: "Ana@Example.org", Name: "Ana"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana@example.org", user.Email)
	assert.Equal(t, models.RoleMember, user.Role)
	assert.True(t, user.Active)
	assert.NotNil(t, user.LastLoginAt)

	again, err := s.Complete(ctx, Identity{Email: "ana@example.org"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Ana", again.Name)
}

func TestSignInAdminEmailGetsAdminRole(t *testing.T) {
	users := repository.NewUserRepository(testutil.NewDB(t))
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Email: "boss@elsewhere.net", Role: models.RoleMember, Active: true}))

	user, err := NewSignIn(users, testAuthConfig()).Complete(ctx, Identity{Email: "boss@elsewhere.net"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestSignInRejections(t *testing.T) {
	users := repository.NewUserRepository(testutil.NewDB(t))
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Email: "gone@example.org", Role: models.RoleMember, Active: false}))
	s := NewSignIn(users, testAuthConfig())

	_, err := s.Complete(ctx, Identity{Email: "stranger@gmail.com"})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = s.Complete(ctx, Identity{Email: "gone@example.org"})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider("http://localhost:8080/api/v1/auth/callback", "Dev@Example.com")
	assert.Equal(t, "http://localhost:8080/api/v1/auth/callback?code=mock&state=abc", p.AuthCodeURL("abc", "n"))

	id, err := p.Exchange(context.Background(), "mock", "")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, "dev", id.Name)

	_, err = p.Exchange(context.Background(), "", "")
	assert.Error(t, err)
}
