package donate

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// PrincipalContextKey is the router locals key holding the resolved Principal.
const PrincipalContextKey = "principal"

// ExtractCredentials pulls the raw credential material off the request:
// the Authorization bearer token and the session cookie value. No
// validation happens here.
func ExtractCredentials(ctx router.Context, cookieName string) Credentials {
	return Credentials{
		BearerToken: bearerFromHeader(ctx),
		SessionID:   ctx.Cookies(cookieName),
	}
}

func bearerFromHeader(ctx router.Context) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := "Bearer"

	if len(header) > len(scheme)+1 && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}

	return ""
}

// RequirePrincipal resolves the request identity and rejects the request
// with a 401 when no strategy succeeds. The Principal is stored both in
// router locals and the standard context.
func RequirePrincipal(resolver *Resolver, cfg Config) router.MiddlewareFunc {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			creds := ExtractCredentials(ctx, cfg.GetSessionCookieName())

			principal, err := resolver.Resolve(ctx.Context(), creds)
			if err != nil {
				return RespondError(ctx, err)
			}

			attachPrincipal(ctx, principal)
			return ctx.Next()
		}
	}
}

// OptionalPrincipal resolves the request identity when possible and always
// proceeds; handlers check PrincipalFromContext themselves.
func OptionalPrincipal(resolver *Resolver, cfg Config) router.MiddlewareFunc {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			creds := ExtractCredentials(ctx, cfg.GetSessionCookieName())

			if principal, err := resolver.Resolve(ctx.Context(), creds); err == nil {
				attachPrincipal(ctx, principal)
			}

			return ctx.Next()
		}
	}
}

// RequireAdmin rejects requests whose resolved Principal is not an admin.
// It must run after RequirePrincipal.
func RequireAdmin() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if !IsAdmin(ctx.Context()) {
				return RespondError(ctx, ErrUnauthorized)
			}
			return ctx.Next()
		}
	}
}

func attachPrincipal(ctx router.Context, principal *Principal) {
	ctx.Locals(PrincipalContextKey, principal)
	ctx.SetContext(WithPrincipal(ctx.Context(), principal))
}

// GetRouterPrincipal extracts the Principal placed in router locals by the
// middleware.
func GetRouterPrincipal(ctx router.Context) (*Principal, bool) {
	raw := ctx.Locals(PrincipalContextKey)
	if raw == nil {
		return nil, false
	}
	principal, ok := raw.(*Principal)
	return principal, ok
}

// SetSessionCookie writes the opaque session id cookie.
func SetSessionCookie(ctx router.Context, cfg Config, session *Session) {
	ctx.Cookie(&router.Cookie{
		Name:     cfg.GetSessionCookieName(),
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(ctx router.Context, cfg Config) {
	ctx.Cookie(&router.Cookie{
		Name:     cfg.GetSessionCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// RespondError maps rich errors to HTTP responses. Auth failures all look
// the same on the wire; the category detail stays in the logs.
func RespondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	return ctx.JSON(status, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

func logErrorDetails(logger Logger, scope string, err error) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		logger.Error("%s: %s", scope, err)
		return
	}

	logger.Error("%s: %s (%s) %s",
		scope,
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)
}
