package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider answers GetSession from a fixed table and counts the lookups.
type countingProvider struct {
	auth.Provider

	mu       sync.Mutex
	lookups  int
	sessions map[string]auth.Principal
	failWith error
	subs     []func(auth.SessionEvent)
	// during runs inside GetSession, before the answer is returned.
	during func()
}

func (p *countingProvider) GetSession(_ context.Context, token string) (*auth.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	if p.during != nil {
		p.during()
	}
	if p.failWith != nil {
		return nil, p.failWith
	}
	principal, ok := p.sessions[token]
	if !ok {
		return nil, auth.ErrNoSession
	}
	return &principal, nil
}

func (p *countingProvider) OnSessionChange(fn func(auth.SessionEvent)) func() {
	p.subs = append(p.subs, fn)
	return func() { p.subs = nil }
}

func (p *countingProvider) fire(ev auth.SessionEvent) {
	for _, fn := range p.subs {
		fn(ev)
	}
}

func TestResolverCachesPrincipals(t *testing.T) {
	provider := &countingProvider{sessions: map[string]auth.Principal{
		"token-a": {ID: "a", Email: "a@example.com"},
	}}
	resolver := auth.NewResolver(provider, logger.Discard())
	defer resolver.Close()

	ctx := context.Background()
	first := resolver.ResolveCurrentPrincipal(ctx, "token-a")
	second := resolver.ResolveCurrentPrincipal(ctx, "token-a")

	require.NotNil(t, first)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.lookups)
	assert.Equal(t, 1, resolver.Cached())
}

func TestResolverReturnsNilOnFailure(t *testing.T) {
	provider := &countingProvider{sessions: map[string]auth.Principal{}}
	resolver := auth.NewResolver(provider, logger.Discard())
	defer resolver.Close()

	ctx := context.Background()
	assert.Nil(t, resolver.ResolveCurrentPrincipal(ctx, ""))
	assert.Equal(t, 0, provider.lookups)

	assert.Nil(t, resolver.ResolveCurrentPrincipal(ctx, "unknown"))

	provider.failWith = errors.New("authorizer unreachable")
	assert.Nil(t, resolver.ResolveCurrentPrincipal(ctx, "unknown"))
	assert.Equal(t, 0, resolver.Cached())
}

func TestResolverClearsOnSessionEvents(t *testing.T) {
	provider := &countingProvider{sessions: map[string]auth.Principal{
		"token-a": {ID: "a"},
	}}
	resolver := auth.NewResolver(provider, logger.Discard())
	defer resolver.Close()

	ctx := context.Background()
	for _, evType := range []auth.EventType{auth.SignedIn, auth.SignedOut, auth.TokenRefreshed} {
		require.NotNil(t, resolver.ResolveCurrentPrincipal(ctx, "token-a"))
		assert.Equal(t, 1, resolver.Cached())

		provider.fire(auth.SessionEvent{Type: evType, PrincipalID: "a"})
		assert.Equal(t, 0, resolver.Cached(), evType.String())
	}
	assert.Equal(t, 3, provider.lookups)
}

func TestResolverDropsLookupOverlappingSignOut(t *testing.T) {
	provider := &countingProvider{sessions: map[string]auth.Principal{
		"token-a": {ID: "a"},
	}}
	resolver := auth.NewResolver(provider, logger.Discard())
	defer resolver.Close()

	provider.during = func() {
		provider.during = nil
		provider.fire(auth.SessionEvent{Type: auth.SignedOut, PrincipalID: "a"})
	}

	ctx := context.Background()
	require.NotNil(t, resolver.ResolveCurrentPrincipal(ctx, "token-a"))
	assert.Equal(t, 0, resolver.Cached())

	delete(provider.sessions, "token-a")

	assert.Nil(t, resolver.ResolveCurrentPrincipal(ctx, "token-a"))
	assert.Equal(t, 2, provider.lookups)
}

func TestResolverSeesLocalSignOut(t *testing.T) {
	db := helpers.NewMemoryDB(t)
	provider := helpers.NewLocalProvider(t, db)
	resolver := auth.NewResolver(provider, logger.Discard())
	defer resolver.Close()

	ctx := context.Background()
	session := helpers.SignUpLocal(t, provider, "resolver@example.com")

	principal := resolver.ResolveCurrentPrincipal(ctx, session.Token)
	require.NotNil(t, principal)
	assert.Equal(t, session.Principal.ID, principal.ID)

	require.NoError(t, provider.SignOut(ctx, session.Token))
	assert.Nil(t, resolver.ResolveCurrentPrincipal(ctx, session.Token))
}

func TestSeparateResolversDoNotShareState(t *testing.T) {
	provider := &countingProvider{sessions: map[string]auth.Principal{"t": {ID: "p"}}}
	one := auth.NewResolver(provider, logger.Discard())
	two := auth.NewResolver(provider, logger.Discard())

	one.ResolveCurrentPrincipal(context.Background(), "t")
	assert.Equal(t, 1, one.Cached())
	assert.Equal(t, 0, two.Cached())
}
