package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.profiles.GetProfile(context.Background(), "missing")
	assert.Equal(t, types.KindNotFound, kindOf(t, err))
}

func TestEnsureProfileKeepsExistingLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")

	profile, err := f.profiles.EnsureProfile(ctx, auth.Principal{ID: "alice", Email: "changed@example.com"})
	require.NoError(t, err)
	require.NotNil(t, profile.OwnedRestaurantID)
	assert.Equal(t, restaurant.ID, *profile.OwnedRestaurantID)
	assert.Equal(t, "alice@example.com", profile.Email)

	created, err := f.profiles.EnsureProfile(ctx, auth.Principal{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"})
	require.NoError(t, err)
	assert.Nil(t, created.OwnedRestaurantID)
	assert.Equal(t, "Bob", created.DisplayName)

	_, err = f.profiles.EnsureProfile(ctx, auth.Principal{})
	assert.Equal(t, types.KindNotAuthenticated, kindOf(t, err))
}

func TestSetOwnedRestaurant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	helpers.CreateTestProfile(t, f.db, "alice", "alice@example.com")
	helpers.CreateTestProfile(t, f.db, "bob", "bob@example.com")
	first := helpers.CreateTestRestaurant(t, f.db, "", "First")
	second := helpers.CreateTestRestaurant(t, f.db, "", "Second")

	linked, err := f.profiles.SetOwnedRestaurant(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	t.Run("same pair again", func(t *testing.T) {
		linked, err := f.profiles.SetOwnedRestaurant(ctx, "alice", first.ID)
		require.NoError(t, err)
		assert.True(t, linked)
	})

	t.Run("restaurant owned by another profile", func(t *testing.T) {
		linked, err := f.profiles.SetOwnedRestaurant(ctx, "bob", first.ID)
		require.NoError(t, err)
		assert.False(t, linked)
	})

	t.Run("profile already owns another restaurant", func(t *testing.T) {
		linked, err := f.profiles.SetOwnedRestaurant(ctx, "alice", second.ID)
		require.NoError(t, err)
		assert.False(t, linked)
	})

	t.Run("missing profile", func(t *testing.T) {
		linked, err := f.profiles.SetOwnedRestaurant(ctx, "nobody", second.ID)
		require.NoError(t, err)
		assert.False(t, linked)
	})

	t.Run("missing restaurant", func(t *testing.T) {
		linked, err := f.profiles.SetOwnedRestaurant(ctx, "bob", 9999)
		require.NoError(t, err)
		assert.False(t, linked)
	})

	profile, err := f.profiles.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, profile.OwnedRestaurantID)
}
