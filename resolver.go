package donate

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// OutcomeStatus is the typed result of one authentication strategy.
type OutcomeStatus int

const (
	// OutcomeSkip means the strategy had nothing to say; try the next one.
	OutcomeSkip OutcomeStatus = iota
	// OutcomeSuccess means the strategy produced a Principal.
	OutcomeSuccess
	// OutcomeHardFail stops the chain immediately; no fallback is allowed.
	OutcomeHardFail
)

// Outcome is what a Strategy returns. Skip carries no information by design:
// callers must not be able to distinguish "credential absent" from
// "credential failed verification".
type Outcome struct {
	Status    OutcomeStatus
	Principal *Principal
	Err       error
}

// Success builds a successful outcome.
func Success(principal *Principal) Outcome {
	return Outcome{Status: OutcomeSuccess, Principal: principal}
}

// Skip builds a pass-through outcome.
func Skip() Outcome {
	return Outcome{Status: OutcomeSkip}
}

// HardFail builds a chain-terminating outcome.
func HardFail(err error) Outcome {
	return Outcome{Status: OutcomeHardFail, Err: err}
}

// Strategy authenticates one kind of credential.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, creds Credentials) Outcome
}

// Resolver walks strategies in order; the first success wins. The ordering
// is part of the contract: bearer tokens are a fresher, re-verifiable proof
// of identity and take precedence over session cookies when both are sent.
type Resolver struct {
	strategies []Strategy
	logger     Logger
}

// NewResolver returns a Resolver over the given strategies, in order.
func NewResolver(strategies ...Strategy) *Resolver {
	filtered := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			filtered = append(filtered, s)
		}
	}

	return &Resolver{
		strategies: filtered,
		logger:     defLogger{},
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve produces the request's Principal or ErrUnauthenticated. Strategy
// errors short-circuit only on HardFail; Skip degrades silently to the next
// strategy, which is how a transient identity-provider outage downgrades to
// session-only auth instead of locking everyone out.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (*Principal, error) {
	for _, strategy := range r.strategies {
		outcome := strategy.Authenticate(ctx, creds)

		switch outcome.Status {
		case OutcomeSuccess:
			if outcome.Principal == nil {
				r.logger.Error("strategy %s returned success without principal", strategy.Name())
				return nil, ErrUnauthenticated
			}
			return outcome.Principal, nil
		case OutcomeHardFail:
			err := outcome.Err
			if err == nil {
				err = ErrUnauthenticated
			}
			r.logger.Info("authentication hard failure in strategy %s", strategy.Name())
			return nil, err
		default:
			r.logger.Debug("strategy %s skipped", strategy.Name())
		}
	}

	return nil, ErrUnauthenticated
}

// BearerStrategy validates Authorization bearer tokens against the identity
// provider and maps the verified subject to a local user.
type BearerStrategy struct {
	verifier TokenVerifier
	users    UserFinder
	timeout  time.Duration
	logger   Logger
}

// NewBearerStrategy builds the bearer token strategy.
func NewBearerStrategy(verifier TokenVerifier, users UserFinder) *BearerStrategy {
	return &BearerStrategy{
		verifier: verifier,
		users:    users,
		timeout:  DefaultBearerTimeout,
		logger:   defLogger{},
	}
}

func (s *BearerStrategy) WithTimeout(timeout time.Duration) *BearerStrategy {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

func (s *BearerStrategy) WithLogger(logger Logger) *BearerStrategy {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *BearerStrategy) Name() string {
	return "bearer"
}

// Authenticate swallows verification errors into Skip: a malformed, expired,
// or unverifiable token falls through to the session cookie rather than
// rejecting a client that still holds a valid session.
func (s *BearerStrategy) Authenticate(ctx context.Context, creds Credentials) Outcome {
	if creds.BearerToken == "" {
		return Skip()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.verifier.Verify(ctx, creds.BearerToken)
	if err != nil {
		s.logger.Debug("bearer verification failed: %s", err)
		return Skip()
	}

	user, err := s.users.GetBySubject(ctx, token.Subject)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			s.logger.Debug("bearer token subject %s has no local user", token.Subject)
			return Skip()
		}
		s.logger.Warn("bearer user lookup failed: %s", err)
		return Skip()
	}

	if user.Suspended {
		return HardFail(ErrAccountSuspended)
	}

	return Success(user.Principal())
}

// SessionStrategy maps the opaque session cookie to a stored session and its
// owning user.
type SessionStrategy struct {
	sessions SessionStore
	users    UserFinder
	logger   Logger
}

// NewSessionStrategy builds the session cookie strategy.
func NewSessionStrategy(sessions SessionStore, users UserFinder) *SessionStrategy {
	return &SessionStrategy{
		sessions: sessions,
		users:    users,
		logger:   defLogger{},
	}
}

func (s *SessionStrategy) WithLogger(logger Logger) *SessionStrategy {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *SessionStrategy) Name() string {
	return "session"
}

func (s *SessionStrategy) Authenticate(ctx context.Context, creds Credentials) Outcome {
	if creds.SessionID == "" {
		return Skip()
	}

	session, err := s.sessions.Get(ctx, creds.SessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("session lookup failed: %s", err)
		}
		return Skip()
	}

	user, err := s.users.GetByUserID(ctx, session.UserID)
	if err != nil {
		s.logger.Debug("session user lookup failed: %s", err)
		return Skip()
	}

	if user.Suspended {
		return HardFail(ErrAccountSuspended)
	}

	return Success(user.Principal())
}

// NewDefaultResolver wires the contractual strategy order: bearer first,
// session cookie fallback.
func NewDefaultResolver(verifier TokenVerifier, sessions SessionStore, users UserFinder) *Resolver {
	return NewResolver(
		NewBearerStrategy(verifier, users),
		NewSessionStrategy(sessions, users),
	)
}
