package donate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// GatePolicy controls who may grant admin rights. The zero value preserves
// the historical behavior: any caller with a valid identity-provider token
// can grant admin to any user. Product has not confirmed whether that is a
// bootstrap mechanism or an oversight, so the stricter check is opt-in.
// TODO: default RequireAdminRequester to true once product signs off.
type GatePolicy struct {
	// RequireAdminRequester rejects requesters that are not already admins.
	RequireAdminRequester bool
	// AllowBootstrap exempts the very first grant (zero admins in the store)
	// from RequireAdminRequester.
	AllowBootstrap bool
}

// AdminGate is the only path that can set the admin attribute on a user.
// It re-verifies the raw requester token on every call instead of reusing a
// Principal resolved earlier in the request; a stale resolution must not
// authorize an escalation.
type AdminGate struct {
	verifier TokenVerifier
	users    Users
	policy   GatePolicy
	timeout  time.Duration
	logger   Logger
}

// NewAdminGate builds the gate with the permissive historical policy.
func NewAdminGate(verifier TokenVerifier, users Users) *AdminGate {
	return &AdminGate{
		verifier: verifier,
		users:    users,
		timeout:  DefaultBearerTimeout,
		logger:   defLogger{},
	}
}

func (g *AdminGate) WithPolicy(policy GatePolicy) *AdminGate {
	g.policy = policy
	return g
}

func (g *AdminGate) WithTimeout(timeout time.Duration) *AdminGate {
	if timeout > 0 {
		g.timeout = timeout
	}
	return g
}

func (g *AdminGate) WithLogger(logger Logger) *AdminGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// GrantAdmin sets the durable admin attribute on the target user. The
// requester token must independently re-verify; there is no fallback to
// session auth here.
func (g *AdminGate) GrantAdmin(ctx context.Context, requesterToken string, targetID uuid.UUID) (*User, error) {
	if requesterToken == "" {
		return nil, ErrUnauthorized.Clone().WithMetadata(map[string]any{
			"reason": "missing bearer token",
		})
	}

	if targetID == uuid.Nil {
		return nil, ErrBadRequest.Clone().WithMetadata(map[string]any{
			"reason": "missing target user id",
		})
	}

	vctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	token, err := g.verifier.Verify(vctx, requesterToken)
	if err != nil {
		g.logger.Info("grant admin rejected: token verification failed: %s", err)
		return nil, errors.Wrap(err, errors.CategoryAuthz, ErrUnauthorized.Message).
			WithTextCode(TextCodeUnauthorized).
			WithCode(errors.CodeForbidden)
	}

	if err := g.checkRequester(ctx, token); err != nil {
		return nil, err
	}

	user, err := g.users.SetAdmin(ctx, targetID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound.Clone().WithMetadata(map[string]any{
				"target_id": targetID.String(),
			})
		}
		g.logger.Error("grant admin write failed for %s: %s", targetID, err)
		return nil, errors.Wrap(err, ErrUpstreamUnavailable.Category, "identity store write failed").
			WithTextCode(TextCodeUpstreamUnavailable)
	}

	g.logger.Info("admin granted to %s by %s", targetID, token.Subject)

	return user, nil
}

func (g *AdminGate) checkRequester(ctx context.Context, token *VerifiedToken) error {
	if !g.policy.RequireAdminRequester {
		return nil
	}

	requester, err := g.users.GetBySubject(ctx, token.Subject)
	if err == nil && requester.IsAdmin {
		return nil
	}

	if g.policy.AllowBootstrap {
		count, countErr := g.users.CountAdmins(ctx)
		if countErr == nil && count == 0 {
			g.logger.Warn("bootstrap admin grant by %s", token.Subject)
			return nil
		}
	}

	return ErrUnauthorized.Clone().WithMetadata(map[string]any{
		"reason": "requester is not an admin",
	})
}
