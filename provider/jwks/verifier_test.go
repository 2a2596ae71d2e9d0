package jwks_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donate "github.com/goliatone/go-donate"
	"github.com/goliatone/go-donate/provider/jwks"
)

const (
	testIssuer   = "https://idp.example.com/"
	testAudience = "https://donate.example.com"
	testKeyID    = "test-key"
)

type verifierFixture struct {
	privateKey *rsa.PrivateKey
	verifier   *jwks.Verifier
}

func setupVerifier(t *testing.T) *verifierFixture {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := jwks.DefaultConfig("", testIssuer)
	cfg.Audience = testAudience
	cfg.GivenKeys = map[string]keyfunc.GivenKey{
		testKeyID: keyfunc.NewGivenCustom(&privateKey.PublicKey, keyfunc.GivenKeyOptions{
			Algorithm: "RS256",
		}),
	}

	verifier, err := jwks.NewVerifier(cfg)
	require.NoError(t, err)

	return &verifierFixture{
		privateKey: privateKey,
		verifier:   verifier,
	}
}

func (f *verifierFixture) signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID

	raw, err := token.SignedString(f.privateKey)
	require.NoError(t, err)
	return raw
}

func standardClaims() jwks.Claims {
	return jwks.Claims{
		Email: "donor@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "idp|donor",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	fixture := setupVerifier(t)

	raw := fixture.signToken(t, standardClaims())

	verified, err := fixture.verifier.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "idp|donor", verified.Subject)
	assert.Equal(t, "donor@example.com", verified.Email)
	assert.True(t, verified.ExpiresAt.After(time.Now()))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	fixture := setupVerifier(t)

	claims := standardClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	raw := fixture.signToken(t, claims)

	_, err := fixture.verifier.Verify(context.Background(), raw)

	var richErr *errors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, donate.TextCodeTokenExpired, richErr.TextCode)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	fixture := setupVerifier(t)

	claims := standardClaims()
	claims.Issuer = "https://evil.example.com/"
	raw := fixture.signToken(t, claims)

	_, err := fixture.verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	fixture := setupVerifier(t)

	claims := standardClaims()
	claims.Audience = jwt.ClaimStrings{"https://other.example.com"}
	raw := fixture.signToken(t, claims)

	_, err := fixture.verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	fixture := setupVerifier(t)

	claims := standardClaims()
	claims.Subject = ""
	raw := fixture.signToken(t, claims)

	_, err := fixture.verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestVerifyRejectsUnsignedGarbage(t *testing.T) {
	fixture := setupVerifier(t)

	_, err := fixture.verifier.Verify(context.Background(), "not-a-jwt")

	var richErr *errors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, donate.TextCodeTokenMalformed, richErr.TextCode)
}

func TestVerifyRejectsHMACToken(t *testing.T) {
	fixture := setupVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, standardClaims())
	token.Header["kid"] = testKeyID
	raw, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = fixture.verifier.Verify(context.Background(), raw)
	assert.Error(t, err)
}

func TestNewVerifierRequiresIssuerAndKeys(t *testing.T) {
	_, err := jwks.NewVerifier(jwks.Config{})
	assert.Error(t, err)

	_, err = jwks.NewVerifier(jwks.Config{Issuer: testIssuer})
	assert.Error(t, err, "no JWK Set URL and no static keys")
}
