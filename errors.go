package donate

import "github.com/goliatone/go-errors"

const (
	TextCodeUnauthenticated     = "unauthenticated"
	TextCodeUnauthorized        = "unauthorized"
	TextCodeIdentityNotFound    = "identity_not_found"
	TextCodeSessionNotFound     = "session_not_found"
	TextCodeAccountSuspended    = "account_suspended"
	TextCodeTokenExpired        = "token_expired"
	TextCodeTokenMalformed      = "token_malformed"
	TextCodeBadRequest          = "bad_request"
	TextCodeUpstreamUnavailable = "upstream_unavailable"
	TextCodeTooManyAttempts     = "too_many_login_attempts"
	TextCodeBadCredentials      = "bad_credentials"
)

// ErrUnauthenticated is returned when no strategy produced a Principal.
var ErrUnauthenticated = errors.New("no valid credential found", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is returned when a credential is valid but the privilege
// is insufficient for the operation.
var ErrUnauthorized = errors.New("insufficient privilege", errors.CategoryAuthz).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeForbidden)

// ErrIdentityNotFound is returned when a credential maps to no local user.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrSessionNotFound covers both missing and expired sessions; callers must
// not be able to tell the two apart.
var ErrSessionNotFound = errors.New("session not found", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrAccountSuspended stops strategy fallthrough: a suspended account is a
// hard rejection, not a reason to try the next credential.
var ErrAccountSuspended = errors.New("account suspended", errors.CategoryAuthz).
	WithTextCode(TextCodeAccountSuspended).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned for expired identity-provider tokens.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature
// checks.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrBadRequest is returned for structurally invalid input.
var ErrBadRequest = errors.New("malformed request", errors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// ErrUpstreamUnavailable is returned when a dependency write or lookup
// failed after local recovery options were exhausted.
var ErrUpstreamUnavailable = errors.New("upstream dependency unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeUpstreamUnavailable).
	WithCode(errors.CodeInternal)

// ErrTooManyLoginAttempts is returned when a user is inside the login
// cooldown window.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(errors.CodeForbidden)

// ErrMismatchedHashAndPassword is returned for a failed password comparison.
// It is indistinguishable from an unknown identifier on purpose.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// IsAuthError reports whether err carries an auth or authz category.
func IsAuthError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth || richErr.Category == errors.CategoryAuthz
}
