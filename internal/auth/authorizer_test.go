package auth_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// droppingAuthorizer accepts connections and closes them without answering.
func droppingAuthorizer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// rejectingAuthorizer answers every GraphQL request with a credential error.
func rejectingAuthorizer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad user credentials"}],"data":null}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAuthorizerProvider(url string) *auth.AuthorizerProvider {
	return auth.NewAuthorizerProvider(url, "menus-client", "", "cookie_session", logger.Discard())
}

func TestAuthorizerTransportFailuresAreBackendErrors(t *testing.T) {
	provider := newAuthorizerProvider(droppingAuthorizer(t).URL)
	ctx := context.Background()

	t.Run("SignIn", func(t *testing.T) {
		_, err := provider.SignIn(ctx, "owner@example.com", "secret1")
		require.Error(t, err)
		assert.Equal(t, types.KindBackendUnavailable, types.KindOf(err))
		assert.True(t, provider.Initialized())
	})

	t.Run("Refresh", func(t *testing.T) {
		_, err := provider.Refresh(ctx, "cookie-token")
		require.Error(t, err)
		assert.Equal(t, types.KindBackendUnavailable, types.KindOf(err))
	})

	t.Run("GetSession", func(t *testing.T) {
		_, err := provider.GetSession(ctx, "header.payload.signature")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNoSession)
		assert.Equal(t, types.KindBackendUnavailable, types.KindOf(err))
	})
}

func TestAuthorizerRejectionsAreNotAuthenticated(t *testing.T) {
	provider := newAuthorizerProvider(rejectingAuthorizer(t).URL)
	ctx := context.Background()

	_, err := provider.SignIn(ctx, "owner@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, types.KindNotAuthenticated, types.KindOf(err))

	_, err = provider.Refresh(ctx, "cookie-token")
	assert.Equal(t, types.KindNotAuthenticated, types.KindOf(err))

	_, err = provider.GetSession(ctx, "cookie-token")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestAuthorizerUnreachableBeforeInit(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + l.Addr().String()
	require.NoError(t, l.Close())

	provider := newAuthorizerProvider(url)
	_, err = provider.SignIn(context.Background(), "owner@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, types.KindBackendUnavailable, types.KindOf(err))
	assert.False(t, provider.Initialized())
}
