package donate_test

import (
	"context"
	"testing"
	"time"

	donate "github.com/goliatone/go-donate"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hashedPassword(t *testing.T, plain string) string {
	t.Helper()

	hash, err := donate.HashPassword(plain)
	require.NoError(t, err)
	return hash
}

func TestVerifyIdentitySuccess(t *testing.T) {
	user := &donate.User{
		ID:           uuid.New(),
		Email:        "donor@example.com",
		PasswordHash: hashedPassword(t, "correct horse"),
	}

	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, user.Email).Return(user, nil)
	store.On("TrackSuccessfulLogin", mock.Anything, user).Return(nil)

	provider := donate.NewUserProvider(store)

	found, err := provider.VerifyIdentity(context.Background(), user.Email, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	store.AssertCalled(t, "TrackSuccessfulLogin", mock.Anything, user)
}

func TestVerifyIdentityWrongPasswordTracksAttempt(t *testing.T) {
	user := &donate.User{
		ID:           uuid.New(),
		Email:        "donor@example.com",
		PasswordHash: hashedPassword(t, "correct horse"),
	}

	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, user.Email).Return(user, nil)
	store.On("TrackAttemptedLogin", mock.Anything, user).Return(nil)

	provider := donate.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), user.Email, "battery staple")
	assert.ErrorIs(t, err, donate.ErrMismatchedHashAndPassword)
	store.AssertCalled(t, "TrackAttemptedLogin", mock.Anything, user)
}

func TestVerifyIdentityUnknownUserLooksLikeBadPassword(t *testing.T) {
	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, "nobody@example.com").
		Return(nil, donate.ErrIdentityNotFound)

	provider := donate.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, donate.ErrMismatchedHashAndPassword)
}

func TestVerifyIdentityRepositoryMissLooksLikeBadPassword(t *testing.T) {
	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, "nobody@example.com").
		Return(nil, repository.NewRecordNotFound())

	provider := donate.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, donate.ErrMismatchedHashAndPassword)
}

func TestVerifyIdentitySuspendedAccount(t *testing.T) {
	user := &donate.User{
		ID:           uuid.New(),
		Email:        "frozen@example.com",
		Suspended:    true,
		PasswordHash: hashedPassword(t, "correct horse"),
	}

	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, user.Email).Return(user, nil)

	provider := donate.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), user.Email, "correct horse")
	assert.ErrorIs(t, err, donate.ErrAccountSuspended)
}

func TestVerifyIdentityCoolDown(t *testing.T) {
	recent := time.Now().Add(-time.Minute)
	user := &donate.User{
		ID:             uuid.New(),
		Email:          "locked@example.com",
		PasswordHash:   hashedPassword(t, "correct horse"),
		LoginAttempts:  donate.MaxLoginAttempts + 1,
		LoginAttemptAt: &recent,
	}

	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, user.Email).Return(user, nil)

	provider := donate.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), user.Email, "correct horse")
	assert.ErrorIs(t, err, donate.ErrTooManyLoginAttempts)
}

func TestVerifyIdentityCoolDownResetsAfterWindow(t *testing.T) {
	stale := time.Now().Add(-48 * time.Hour)
	user := &donate.User{
		ID:             uuid.New(),
		Email:          "recovered@example.com",
		PasswordHash:   hashedPassword(t, "correct horse"),
		LoginAttempts:  donate.MaxLoginAttempts + 1,
		LoginAttemptAt: &stale,
	}

	store := new(MockUserTracker)
	store.On("GetByIdentifier", mock.Anything, user.Email).Return(user, nil)
	store.On("TrackSuccessfulLogin", mock.Anything, user).Return(nil)

	provider := donate.NewUserProvider(store)

	found, err := provider.VerifyIdentity(context.Background(), user.Email, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}
