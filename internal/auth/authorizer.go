package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/utils"
	"github.com/sirupsen/logrus"
)

// ownerRole is the Authorizer role granted to restaurant owners.
const ownerRole = "user"

// AuthorizerProvider delegates authentication to an Authorizer server.
// The client is created on first use, after the server answers a ping.
type AuthorizerProvider struct {
	eventHub

	url         string
	clientID    string
	redirectURL string
	cookieName  string
	log         *logrus.Logger

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// NewAuthorizerProvider creates a provider for the Authorizer at url.
func NewAuthorizerProvider(url, clientID, redirectURL, cookieName string, log *logrus.Logger) *AuthorizerProvider {
	return &AuthorizerProvider{
		url:         url,
		clientID:    clientID,
		redirectURL: redirectURL,
		cookieName:  cookieName,
		log:         log,
	}
}

// Initialized reports whether the Authorizer client has been created.
func (p *AuthorizerProvider) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client != nil
}

// authClient returns the client, creating it if needed. A failed attempt is retried on the next call.
func (p *AuthorizerProvider) authClient() (*authorizer.AuthorizerClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	if err := utils.PingAuthorizer(p.url); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"authorizerURL": p.url,
		"clientID":      p.clientID,
		"redirectURL":   p.redirectURL,
	}).Info("Initializing Authorizer")

	client, err := authorizer.NewAuthorizerClient(p.clientID, p.url, p.redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	p.client = client
	return client, nil
}

// GetSession implements Provider. Browser session cookies are validated as sessions,
// JWT access tokens are checked by fetching the bearer's profile.
func (p *AuthorizerProvider) GetSession(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	client, err := p.authClient()
	if err != nil {
		return nil, types.Backend("auth.GetSession", err)
	}

	if isJWT(token) {
		user, err := client.GetProfile(bearer(token))
		if err != nil {
			if unavailable(err) {
				return nil, types.Backend("auth.GetSession", err)
			}
			p.log.WithError(err).Debug("Authorizer profile lookup rejected token")
			return nil, ErrNoSession
		}
		return userPrincipal(user)
	}

	roles := []string{ownerRole}
	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: token,
		Roles:  stringPtrs(roles),
	})
	if err != nil {
		if unavailable(err) {
			return nil, types.Backend("auth.GetSession", err)
		}
		p.log.WithError(err).Debug("Authorizer session validation failed")
		return nil, ErrNoSession
	}
	if res == nil || !res.IsValid {
		return nil, ErrNoSession
	}
	return userPrincipal(res.User)
}

// SignIn implements Provider.
func (p *AuthorizerProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.SignIn"

	client, err := p.authClient()
	if err != nil {
		return nil, types.Backend(op, err)
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return nil, authError(op, "invalid email or password", err)
	}
	if res == nil {
		return nil, types.NewError(types.KindNotAuthenticated, op, "invalid email or password")
	}

	session, err := tokenSession(res.AccessToken, res.User)
	if err != nil {
		return nil, types.Backend(op, err)
	}

	p.emit(SessionEvent{Type: SignedIn, PrincipalID: session.Principal.ID})
	return session, nil
}

// SignUp implements Provider.
func (p *AuthorizerProvider) SignUp(ctx context.Context, email, password string, profile ProfileData) (*Session, error) {
	const op = "auth.SignUp"

	client, err := p.authClient()
	if err != nil {
		return nil, types.Backend(op, err)
	}

	roles := []string{ownerRole}
	input := &authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           stringPtrs(roles),
	}
	if name := strings.TrimSpace(profile.DisplayName); name != "" {
		input.GivenName = &name
	}

	res, err := client.SignUp(input)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already") {
			return nil, &types.Error{Kind: types.KindConflict, Op: op, Message: "an account with this email already exists", Err: err}
		}
		return nil, types.Backend(op, err)
	}
	if res == nil {
		return nil, types.NewError(types.KindBackendUnavailable, op, "empty signup response")
	}

	session, err := tokenSession(res.AccessToken, res.User)
	if err != nil {
		// Email verification enabled servers return no token until verified
		return nil, &types.Error{Kind: types.KindNotAuthenticated, Op: op, Message: "account created, sign in to continue", Err: err}
	}

	p.emit(SessionEvent{Type: SignedIn, PrincipalID: session.Principal.ID})
	return session, nil
}

// SignOut implements Provider.
func (p *AuthorizerProvider) SignOut(ctx context.Context, token string) error {
	const op = "auth.SignOut"
	if token == "" {
		return nil
	}

	principal, _ := p.GetSession(ctx, token)

	client, err := p.authClient()
	if err != nil {
		return types.Backend(op, err)
	}
	if _, err := client.Logout(p.sessionHeaders(token)); err != nil {
		return types.Backend(op, err)
	}

	ev := SessionEvent{Type: SignedOut}
	if principal != nil {
		ev.PrincipalID = principal.ID
	}
	p.emit(ev)
	return nil
}

// Refresh implements Provider.
func (p *AuthorizerProvider) Refresh(ctx context.Context, token string) (*Session, error) {
	const op = "auth.Refresh"

	client, err := p.authClient()
	if err != nil {
		return nil, types.Backend(op, err)
	}

	res, err := client.GetSession(&authorizer.SessionQueryInput{}, p.sessionHeaders(token))
	if err != nil {
		return nil, authError(op, "session expired", err)
	}
	if res == nil {
		return nil, types.NewError(types.KindNotAuthenticated, op, "session expired")
	}

	session, err := tokenSession(res.AccessToken, res.User)
	if err != nil {
		return nil, &types.Error{Kind: types.KindNotAuthenticated, Op: op, Message: "session expired", Err: err}
	}

	p.emit(SessionEvent{Type: TokenRefreshed, PrincipalID: session.Principal.ID})
	return session, nil
}

// sessionHeaders presents token both as the session cookie and as a bearer token.
func (p *AuthorizerProvider) sessionHeaders(token string) map[string]string {
	headers := bearer(token)
	headers["Cookie"] = fmt.Sprintf("%s=%s", p.cookieName, token)
	return headers
}

// authError reports a rejected request as NotAuthenticated and an unreachable Authorizer
// as BackendUnavailable.
func authError(op, message string, err error) error {
	if unavailable(err) {
		return types.Backend(op, err)
	}
	return &types.Error{Kind: types.KindNotAuthenticated, Op: op, Message: message, Err: err}
}

// unavailable reports transport failures and server-side error statuses.
// The client turns GraphQL rejections into plain errors carrying the server message.
func unavailable(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, code := range []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	} {
		if strings.HasPrefix(msg, http.StatusText(code)+":") {
			return true
		}
	}
	return false
}

// authorizerUser holds the user fields this service reads from Authorizer responses.
type authorizerUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	GivenName *string `json:"given_name"`
	Nickname  *string `json:"nickname"`
}

// userPrincipal converts an Authorizer user through its JSON form.
func userPrincipal(user interface{}) (*Principal, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, ErrNoSession
	}
	var u authorizerUser
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		return nil, ErrNoSession
	}

	principal := &Principal{ID: u.ID, Email: u.Email}
	switch {
	case u.GivenName != nil:
		principal.DisplayName = *u.GivenName
	case u.Nickname != nil:
		principal.DisplayName = *u.Nickname
	}
	return principal, nil
}

func tokenSession(accessToken *string, user interface{}) (*Session, error) {
	if accessToken == nil || *accessToken == "" {
		return nil, fmt.Errorf("authorizer returned no access token")
	}
	principal, err := userPrincipal(user)
	if err != nil {
		return nil, fmt.Errorf("authorizer returned no user")
	}
	return &Session{Token: *accessToken, Principal: *principal}, nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func isJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

func stringPtrs(values []string) []*string {
	ptrs := make([]*string, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	return ptrs
}
