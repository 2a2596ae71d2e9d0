package donate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Principal is the resolved, authenticated identity attached to a request.
// Only the Resolver (and the strategies it runs) produce Principals; request
// handlers must never construct one from request content.
type Principal struct {
	ID      uuid.UUID
	Email   string
	IsAdmin bool
}

// VerifiedToken is the result of validating a bearer token against the
// identity provider.
type VerifiedToken struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// TokenVerifier re-validates identity-provider bearer tokens. Implementations
// must honor ctx deadlines; a verification call must never hang past the
// request's own lifetime.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*VerifiedToken, error)
}

// UserFinder is the narrow user lookup surface the strategies need.
// The Users repository satisfies it.
type UserFinder interface {
	GetBySubject(ctx context.Context, subject string) (*User, error)
	GetByUserID(ctx context.Context, id uuid.UUID) (*User, error)
}

// Credentials holds the raw credential material extracted from a request
// before any validation.
type Credentials struct {
	BearerToken string
	SessionID   string
}

// HasAny reports whether there is anything to resolve.
func (c Credentials) HasAny() bool {
	return c.BearerToken != "" || c.SessionID != ""
}

// Config holds the options the HTTP glue needs
type Config interface {
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
	GetBearerTimeout() time.Duration
}

type config struct {
	cookieName    string
	sessionTTL    time.Duration
	bearerTimeout time.Duration
}

func (c config) GetSessionCookieName() string    { return c.cookieName }
func (c config) GetSessionTTL() time.Duration    { return c.sessionTTL }
func (c config) GetBearerTimeout() time.Duration { return c.bearerTimeout }

// DefaultConfig returns a Config with the stock cookie name, the 14 day
// session TTL, and a 5 second bearer verification timeout.
func DefaultConfig() Config {
	return config{
		cookieName:    DefaultSessionCookieName,
		sessionTTL:    DefaultSessionTTL,
		bearerTimeout: DefaultBearerTimeout,
	}
}

const (
	// DefaultSessionCookieName is the cookie holding the opaque session id.
	DefaultSessionCookieName = "donate_session"
	// DefaultSessionTTL is the fixed session lifetime.
	DefaultSessionTTL = 14 * 24 * time.Hour
	// DefaultBearerTimeout bounds calls to the identity provider.
	DefaultBearerTimeout = 5 * time.Second
)

// DefaultLogger returns the printf fallback logger used when no
// Logger is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] DONATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] DONATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] DONATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] DONATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
