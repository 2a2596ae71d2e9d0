package donate_test

import (
	"context"

	donate "github.com/goliatone/go-donate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTokenVerifier implements donate.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, raw string) (*donate.VerifiedToken, error) {
	args := m.Called(ctx, raw)
	if token := args.Get(0); token != nil {
		return token.(*donate.VerifiedToken), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserFinder implements donate.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetBySubject(ctx context.Context, subject string) (*donate.User, error) {
	args := m.Called(ctx, subject)
	if user := args.Get(0); user != nil {
		return user.(*donate.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserFinder) GetByUserID(ctx context.Context, id uuid.UUID) (*donate.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*donate.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionStore implements donate.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID uuid.UUID) (*donate.Session, error) {
	args := m.Called(ctx, userID)
	if session := args.Get(0); session != nil {
		return session.(*donate.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*donate.Session, error) {
	args := m.Called(ctx, id)
	if session := args.Get(0); session != nil {
		return session.(*donate.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserTracker implements donate.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*donate.User, error) {
	args := m.Called(ctx, identifier)
	if user := args.Get(0); user != nil {
		return user.(*donate.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *donate.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *donate.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
