package auth

import (
	"context"
	"slices"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

// AllowList decides who may sign in and who is an administrator.
type AllowList struct {
	emails  []string
	domains []string
	admins  []string
}

func NewAllowList(cfg config.AuthConfig) AllowList {
	return AllowList{emails: cfg.AllowedEmails, domains: cfg.AllowedDomains, admins: cfg.AdminEmails}
}

// Allowed reports whether email matches an allowed address or domain.
// Admin emails are always allowed.
func (a AllowList) Allowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if slices.Contains(a.emails, email) || slices.Contains(a.admins, email) {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return slices.Contains(a.domains, email[at+1:])
}

func (a AllowList) IsAdmin(email string) bool {
	return slices.Contains(a.admins, strings.ToLower(strings.TrimSpace(email)))
}

// SignIn resolves a verified identity to a local user.
type SignIn struct {
	users repository.UserRepository
	allow AllowList
	now   func() time.Time
}

func NewSignIn(users repository.UserRepository, cfg config.AuthConfig) *SignIn {
	return &SignIn{users: users, allow: NewAllowList(cfg), now: time.Now}
}

// Complete checks the allow list, creates the user on first sign-in and
// records the login. Deactivated users are refused.
func (s *SignIn) Complete(ctx context.Context, id Identity) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if !s.allow.Allowed(email) {
		return nil, apperrors.Forbidden("this account is not allowed to sign in")
	}

	now := s.now().UTC()
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case apperrors.IsNotFound(err):
		user = &models.User{Email: email, Name: id.Name, Role: models.RoleMember, Active: true, LastLoginAt: &now}
		if s.allow.IsAdmin(email) {
			user.Role = models.RoleAdmin
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	}

	if !user.Active {
		return nil, apperrors.Forbidden("this account has been deactivated")
	}
	updates := map[string]any{"last_login_at": now}
	if user.Name == "" && id.Name != "" {
		updates["name"] = id.Name
	}
	if s.allow.IsAdmin(email) && user.Role != models.RoleAdmin {
		updates["role"] = models.RoleAdmin
	}
	return s.users.Update(ctx, user.ID, updates)
}
