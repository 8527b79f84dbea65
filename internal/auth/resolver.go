package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// resolverTTL bounds how long a resolved token is trusted without asking the provider again.
	resolverTTL = 30 * time.Second
	// resolverMaxEntries caps the cache, it is emptied when full.
	resolverMaxEntries = 4096
)

type cachedPrincipal struct {
	principal Principal
	expires   time.Time
}

// Resolver answers "who is the current principal" for a request token.
// Its cache belongs to the instance and is cleared on every session event from the provider.
type Resolver struct {
	provider    Provider
	log         *logrus.Logger
	now         func() time.Time
	unsubscribe func()

	mu    sync.RWMutex
	cache map[string]cachedPrincipal
	// generation counts invalidations. A lookup that straddles one is not cached.
	generation uint64
}

// NewResolver subscribes to provider session events. Call Close to unsubscribe.
func NewResolver(provider Provider, log *logrus.Logger) *Resolver {
	r := &Resolver{
		provider: provider,
		log:      log,
		now:      time.Now,
		cache:    make(map[string]cachedPrincipal),
	}
	r.unsubscribe = provider.OnSessionChange(func(ev SessionEvent) {
		r.Invalidate()
		r.log.WithFields(logrus.Fields{
			"event":     ev.Type.String(),
			"principal": ev.PrincipalID,
		}).Debug("Session changed, principal cache cleared")
	})
	return r
}

// ResolveCurrentPrincipal returns the principal for token, or nil when there is none.
// Provider failures are logged and reported as nil.
func (r *Resolver) ResolveCurrentPrincipal(ctx context.Context, token string) *Principal {
	if token == "" {
		return nil
	}

	now := r.now()
	r.mu.RLock()
	entry, ok := r.cache[token]
	generation := r.generation
	r.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		p := entry.principal
		return &p
	}

	principal, err := r.provider.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			r.log.Debug("No session for request token")
		} else {
			r.log.WithError(err).Warn("Session resolution failed")
		}
		return nil
	}
	if principal == nil {
		return nil
	}

	r.mu.Lock()
	if r.generation == generation {
		if len(r.cache) >= resolverMaxEntries {
			r.cache = make(map[string]cachedPrincipal)
		}
		r.cache[token] = cachedPrincipal{principal: *principal, expires: now.Add(resolverTTL)}
	}
	r.mu.Unlock()

	p := *principal
	return &p
}

// Invalidate drops every cached principal.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]cachedPrincipal)
	r.generation++
	r.mu.Unlock()
}

// Cached reports how many tokens are currently cached.
func (r *Resolver) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Close unsubscribes from provider events.
func (r *Resolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
