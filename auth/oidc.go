package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"publishing-ops-api/config"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Identity is what the identity provider tells us about the signer.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Provider runs the authorization-code flow.
type Provider interface {
	AuthCodeURL(state, nonce string) string
	Exchange(ctx context.Context, code, nonce string) (Identity, error)
}

// OIDCProvider signs users in with an OpenID Connect issuer (Google by default).
type OIDCProvider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
}

func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("oidc client id and secret are required")
	}
	client := &http.Client{Timeout: 30 * time.Second}
	ctx = gooidc.ClientContext(ctx, client)

	issuer := strings.TrimSuffix(strings.TrimSuffix(cfg.IssuerURL, "/.well-known/openid-configuration"), "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "email", "profile"}
	}
	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     op.Endpoint(),
			Scopes:       scopes,
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:   client,
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state, nonce string) string {
	return p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nonce         string `json:"nonce"`
}

func (p *OIDCProvider) Exchange(ctx context.Context, code, nonce string) (Identity, error) {
	if code == "" {
		return Identity{}, errors.New("authorization code is required")
	}
	ctx = gooidc.ClientContext(ctx, p.client)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return Identity{}, errors.New("missing id_token in token response")
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if nonce == "" || claims.Nonce != nonce {
		return Identity{}, errors.New("invalid nonce")
	}
	return Identity{
		Subject:       idToken.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claims.Email)),
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

// RandomToken returns a URL-safe random string for state and nonce values.
func RandomToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MockProvider signs everyone in as a fixed development identity. It never
// contacts an issuer and must not be used in production.
type MockProvider struct {
	redirectURL string
	email       string
}

func NewMockProvider(redirectURL, email string) *MockProvider {
	return &MockProvider{redirectURL: redirectURL, email: strings.ToLower(strings.TrimSpace(email))}
}

func (p *MockProvider) AuthCodeURL(state, nonce string) string {
	q := url.Values{"code": {"mock"}, "state": {state}}
	return p.redirectURL + "?" + q.Encode()
}

func (p *MockProvider) Exchange(_ context.Context, code, _ string) (Identity, error) {
	if code == "" {
		return Identity{}, errors.New("authorization code is required")
	}
	name := p.email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	return Identity{Subject: "mock:" + p.email, Email: p.email, EmailVerified: true, Name: name}, nil
}

// NewProvider returns the provider selected by cfg.Mode.
func NewProvider(ctx context.Context, cfg config.AuthConfig) (Provider, error) {
	if cfg.Mode == config.AuthModeMock {
		return NewMockProvider(cfg.OIDC.RedirectURL, cfg.DevEmail), nil
	}
	return NewOIDCProvider(ctx, cfg.OIDC)
}
