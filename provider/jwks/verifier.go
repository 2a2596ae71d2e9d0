package jwks

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	donate "github.com/goliatone/go-donate"
)

// Claims are the token claims the verifier cares about. Everything else
// in the token is ignored.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates provider-issued JWTs against a JWK Set. It
// implements donate.TokenVerifier.
type Verifier struct {
	config  Config
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	logger  donate.Logger
}

// NewVerifier builds a Verifier from the given config. When GivenKeys
// is set the remote JWK Set is skipped entirely.
func NewVerifier(cfg Config, opts ...func(*Verifier)) (*Verifier, error) {
	cfg = cfg.normalized()

	if cfg.Issuer == "" {
		return nil, fmt.Errorf("jwks: issuer is required")
	}

	v := &Verifier{config: cfg}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.logger == nil {
		v.logger = donate.DefaultLogger()
	}

	if len(cfg.GivenKeys) > 0 {
		v.keyFunc = keyfunc.NewGiven(cfg.GivenKeys).Keyfunc
		return v, nil
	}

	if cfg.JWKSetURL == "" {
		return nil, fmt.Errorf("jwks: a JWK Set URL or static keys are required")
	}

	set, err := keyfunc.Get(cfg.JWKSetURL, keyfunc.Options{
		RefreshInterval:   cfg.RefreshInterval,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    cfg.RefreshTimeout,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.logger.Warn("jwks: background key refresh failed: %s", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks: failed to fetch JWK Set: %w", err)
	}

	v.jwks = set
	v.keyFunc = set.Keyfunc

	return v, nil
}

func WithLogger(logger donate.Logger) func(*Verifier) {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Verify implements donate.TokenVerifier.
func (v *Verifier) Verify(ctx context.Context, raw string) (*donate.VerifiedToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parseOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
	}
	if v.config.Audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(v.config.Audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyFunc, parseOpts...)
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, donate.ErrTokenMalformed.Clone()
	}

	verified := &donate.VerifiedToken{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}

	return verified, nil
}

// Close stops the background JWK Set refresh, if one is running.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	clone := donate.ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = donate.ErrTokenExpired.Clone()
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"cause": err.Error(),
	})
}
