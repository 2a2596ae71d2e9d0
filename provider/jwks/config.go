package jwks

import (
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
)

// Config holds identity-provider settings for token verification.
type Config struct {
	// JWKSetURL is where the provider publishes its signing keys.
	JWKSetURL string

	// Issuer is the expected iss claim.
	Issuer string

	// Audience is the expected aud claim (optional).
	Audience string

	// GivenKeys supplies static signing keys keyed by kid, used in
	// place of the remote JWK Set. Mostly useful for tests.
	GivenKeys map[string]keyfunc.GivenKey

	// RefreshInterval is how often the JWK Set is refreshed in the
	// background. Default: 1 hour.
	RefreshInterval time.Duration

	// RefreshTimeout bounds a single JWK Set fetch. Default: 10s.
	RefreshTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(jwkSetURL, issuer string) Config {
	return Config{
		JWKSetURL:       jwkSetURL,
		Issuer:          issuer,
		RefreshInterval: time.Hour,
		RefreshTimeout:  10 * time.Second,
	}
}

func (c Config) normalized() Config {
	c.JWKSetURL = strings.TrimSpace(c.JWKSetURL)
	c.Issuer = strings.TrimSpace(c.Issuer)

	if c.RefreshInterval == 0 {
		c.RefreshInterval = time.Hour
	}

	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = 10 * time.Second
	}

	return c
}
