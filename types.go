package rolesync

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Credentials are the username/password supplied at login. They are passed to
// the gateway verbatim and never persisted locally.
type Credentials struct {
	Username string
	Password string

	// Authenticated marks a caller that already holds a valid session; the
	// engine short-circuits to an accepted no-op pass.
	Authenticated bool
}

// Reconciler runs one reconciliation pass for a login attempt.
type Reconciler interface {
	Reconcile(ctx context.Context, creds Credentials) (*Result, error)
}

// RoleSource answers "which local roles does this user hold right now"
// according to the remote gateway. Implemented by gateway.Client.
type RoleSource interface {
	GetUserRoles(ctx context.Context, username, password string) ([]string, error)
}

type LoginPayload interface {
	GetUsername() string
	GetPassword() string
}

// Identity holds the attributes of a reconciled user
type Identity interface {
	ID() string
	Username() string
	Role() string
	Active() bool
}

// TokenConfig holds session token options
type TokenConfig interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// TokenService mints and validates session tokens for accepted logins.
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(token string) (*JWTClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ROLESYNC "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ROLESYNC "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ROLESYNC "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ROLESYNC "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
