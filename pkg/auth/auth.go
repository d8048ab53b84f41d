// Package auth applies hub credentials to outgoing HTTP requests.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Type represents the type of authentication.
type Type string

// BearerAuthType represents Bearer token authentication.
const BearerAuthType Type = "bearer"

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// FromToken returns a bearer authenticator for token, or nil when the token
// is blank. A nil Authenticator means anonymous access.
func FromToken(token string) Authenticator {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return BearerAuth{Token: token}
}

// ApplyTo applies a to req when a is set.
func ApplyTo(a Authenticator, req *http.Request) error {
	if a == nil {
		return nil
	}
	return a.Apply(req)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying a. Clients prefer it over
// their configured Authenticator for requests made with that context.
func NewContext(ctx context.Context, a Authenticator) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the Authenticator stored in ctx, if any.
func FromContext(ctx context.Context) Authenticator {
	a, _ := ctx.Value(contextKey{}).(Authenticator)
	return a
}
