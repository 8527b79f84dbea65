package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSignUpAndSession(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)

	session, err := provider.SignUp(ctx, " Owner@Example.com ", "secret1", auth.ProfileData{DisplayName: "Owner"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "owner@example.com", session.Principal.Email)

	principal, err := provider.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Principal, *principal)

	_, err = provider.SignUp(ctx, "owner@example.com", "another", auth.ProfileData{})
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestLocalSignIn(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)

	created, err := provider.SignUp(ctx, "chef@example.com", "secret1", auth.ProfileData{})
	require.NoError(t, err)

	session, err := provider.SignIn(ctx, "CHEF@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.Principal.ID, session.Principal.ID)

	_, err = provider.SignIn(ctx, "chef@example.com", "wrong-password")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	_, err = provider.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}

func TestLocalSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)

	var events []auth.EventType
	unsubscribe := provider.OnSessionChange(func(ev auth.SessionEvent) {
		events = append(events, ev.Type)
	})
	defer unsubscribe()

	session := helpers.SignUpLocal(t, provider, "out@example.com")
	require.NoError(t, provider.SignOut(ctx, session.Token))

	_, err := provider.GetSession(ctx, session.Token)
	assert.True(t, errors.Is(err, auth.ErrNoSession))

	// A second sign out is a no-op and emits nothing
	require.NoError(t, provider.SignOut(ctx, session.Token))
	require.NoError(t, provider.SignOut(ctx, "garbage"))

	assert.Equal(t, []auth.EventType{auth.SignedIn, auth.SignedOut}, events)
}

func TestLocalRefresh(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)

	session := helpers.SignUpLocal(t, provider, "refresh@example.com")
	refreshed, err := provider.Refresh(ctx, session.Token)
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, refreshed.Token)
	assert.Equal(t, session.Principal.ID, refreshed.Principal.ID)

	_, err = provider.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	_, err = provider.Refresh(ctx, session.Token)
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}

func TestLocalTokenExpiryAndSecret(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewMemoryDB(t)

	now := time.Now()
	clock := func() time.Time { return now }
	provider := auth.NewLocalProvider(db, "first-secret-0123456", time.Minute, logger.Discard(),
		auth.WithHashCost(4), auth.WithClock(clock))

	session := helpers.SignUpLocal(t, provider, "expiry@example.com")

	other := auth.NewLocalProvider(db, "second-secret-012345", time.Minute, logger.Discard())
	_, err := other.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	now = now.Add(2 * time.Minute)
	_, err = provider.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)

	calls := 0
	unsubscribe := provider.OnSessionChange(func(auth.SessionEvent) { calls++ })
	helpers.SignUpLocal(t, provider, "first@example.com")
	unsubscribe()
	unsubscribe()
	helpers.SignUpLocal(t, provider, "second@example.com")

	assert.Equal(t, 1, calls)
}
