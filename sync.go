package donate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// IdentitySync exchanges a verified identity-provider token for a local
// user record and a fresh session. Clients call it right after completing
// the provider's login flow so subsequent requests can ride the cookie.
type IdentitySync struct {
	verifier TokenVerifier
	users    Users
	sessions SessionStore
	timeout  time.Duration
	logger   Logger
}

func NewIdentitySync(verifier TokenVerifier, users Users, sessions SessionStore) *IdentitySync {
	return &IdentitySync{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		timeout:  DefaultBearerTimeout,
		logger:   defLogger{},
	}
}

func (s *IdentitySync) WithTimeout(timeout time.Duration) *IdentitySync {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

func (s *IdentitySync) WithLogger(logger Logger) *IdentitySync {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Sync verifies the raw bearer token, gets or registers the local user, and
// issues a session for it. Unlike the Resolver there is no fallback here:
// a token that fails verification is a hard rejection.
func (s *IdentitySync) Sync(ctx context.Context, rawToken string) (*User, *Session, error) {
	if rawToken == "" {
		return nil, nil, ErrUnauthenticated
	}

	vctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.verifier.Verify(vctx, rawToken)
	if err != nil {
		s.logger.Info("sync rejected: token verification failed: %s", err)
		return nil, nil, errors.Wrap(err, errors.CategoryAuth, ErrUnauthenticated.Message).
			WithTextCode(TextCodeUnauthenticated).
			WithCode(errors.CodeUnauthorized)
	}

	user, err := s.users.GetOrRegister(ctx, &User{
		Subject: token.Subject,
		Email:   token.Email,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryOperation, "failed to sync local user")
	}

	if user.Suspended {
		return nil, nil, ErrAccountSuspended
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}
