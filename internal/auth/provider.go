// provider.go
//
// Restaurant menu management data and authorization service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sharmers-menus.
// sharmers-menus is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sharmers-menus is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sharmers-menus.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/localnerve/sharmers-menus/internal/metrics"
)

// ErrNoSession is returned by GetSession when the token does not name a live session.
var ErrNoSession = errors.New("no session")

// Principal is an authenticated identity issued by the auth provider.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
}

// Session is a signed-in principal and the token that represents it.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Principal Principal `json:"user"`
}

// ProfileData is the extra registration data passed through to the provider.
type ProfileData struct {
	DisplayName string
}

// EventType names a session state transition.
type EventType int

const (
	SignedIn EventType = iota + 1
	SignedOut
	TokenRefreshed
)

func (t EventType) String() string {
	switch t {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	}
	return "unknown"
}

// SessionEvent is delivered to OnSessionChange subscribers.
type SessionEvent struct {
	Type        EventType
	PrincipalID string
	At          time.Time
}

// Provider is the authentication capability the service depends on.
type Provider interface {
	// GetSession resolves a token to its principal, or ErrNoSession.
	GetSession(ctx context.Context, token string) (*Principal, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, profile ProfileData) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*Session, error)
	// OnSessionChange registers fn for every session transition and returns its unsubscribe func.
	// fn runs synchronously on the goroutine that caused the transition.
	OnSessionChange(fn func(SessionEvent)) (unsubscribe func())
}

// eventHub fans session events out to subscribers. Embedded by providers.
type eventHub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(SessionEvent)
}

// OnSessionChange implements Provider.
func (h *eventHub) OnSessionChange(fn func(SessionEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(SessionEvent))
	}
	id := h.next
	h.next++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *eventHub) emit(ev SessionEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	metrics.SessionEvents.WithLabelValues(ev.Type.String()).Inc()

	h.mu.RLock()
	subs := make([]func(SessionEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
