package donate

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// sessionIDBytes is the entropy of a session identifier. 32 bytes is well
// past the 128 bit unguessability floor.
const sessionIDBytes = 32

// SessionStore owns session persistence. Every method hits durable storage;
// expiry is enforced in the read predicate so an expired-but-unreaped row is
// indistinguishable from a deleted one.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessionStore struct {
	db     bun.IDB
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

var _ SessionStore = (*sessionStore)(nil)

type SessionStoreOption func(*sessionStore)

// WithSessionTTL overrides the fixed session lifetime.
func WithSessionTTL(ttl time.Duration) SessionStoreOption {
	return func(s *sessionStore) {
		if ttl != 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionLogger sets the logger used by the store.
func WithSessionLogger(logger Logger) SessionStoreOption {
	return func(s *sessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionClock overrides the store clock, used by expiry tests.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *sessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSessionStore returns a bun backed SessionStore.
func NewSessionStore(db bun.IDB, opts ...SessionStoreOption) SessionStore {
	store := &sessionStore{
		db:     db,
		ttl:    DefaultSessionTTL,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store
}

func (s *sessionStore) Create(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, ErrBadRequest.Clone().WithMetadata(map[string]any{
			"reason": "missing user id",
		})
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate session id")
	}

	now := s.now()
	session := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if _, err := s.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to persist session")
	}

	return session, nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	session := &Session{}
	err := s.db.NewSelect().
		Model(session).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.expires_at > ?", s.now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load session")
	}

	return session, nil
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	// deleting a nonexistent session is not an error
	_, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to delete session")
	}

	return nil
}

func (s *sessionStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}

	_, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to delete user sessions")
	}

	return nil
}

func (s *sessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("?TableAlias.expires_at <= ?", s.now()).
		Exec(ctx)

	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryOperation, "failed to reap expired sessions")
	}

	reaped, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryOperation, "failed to count reaped sessions")
	}

	return reaped, nil
}

func generateSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
