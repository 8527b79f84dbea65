package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const localIssuer = "sharmers-menus"

// localClaims are the session token claims issued by LocalProvider.
type localClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LocalProvider authenticates against the credentials table and issues HS256 session tokens.
type LocalProvider struct {
	eventHub

	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	log    *logrus.Logger

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// LocalOption customizes a LocalProvider.
type LocalOption func(*LocalProvider)

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.cost = cost }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) { p.now = now }
}

// NewLocalProvider creates a provider backed by db.
func NewLocalProvider(db *gorm.DB, secret string, ttl time.Duration, log *logrus.Logger, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		db:      db,
		secret:  []byte(secret),
		ttl:     ttl,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		log:     log,
		revoked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetSession implements Provider.
func (p *LocalProvider) GetSession(ctx context.Context, token string) (*Principal, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, ErrNoSession
	}
	if p.isRevoked(claims.ID) {
		return nil, ErrNoSession
	}
	return claimsPrincipal(claims), nil
}

// SignIn implements Provider.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.SignIn"

	var cred models.Credential
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.KindNotAuthenticated, op, "invalid email or password")
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, types.NewError(types.KindNotAuthenticated, op, "invalid email or password")
	}

	principal := Principal{ID: cred.PrincipalID, Email: cred.Email, DisplayName: cred.DisplayName}
	session, err := p.issue(principal)
	if err != nil {
		return nil, types.Backend(op, err)
	}

	p.emit(SessionEvent{Type: SignedIn, PrincipalID: principal.ID, At: p.now()})
	return session, nil
}

// SignUp implements Provider.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string, profile ProfileData) (*Session, error) {
	const op = "auth.SignUp"
	email = normalizeEmail(email)

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.Credential{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, types.Backend(op, err)
	}
	if count > 0 {
		return nil, types.NewError(types.KindConflict, op, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, types.Backend(op, fmt.Errorf("hash password: %w", err))
	}

	cred := models.Credential{
		PrincipalID:  uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(profile.DisplayName),
	}
	if err := p.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return nil, types.Backend(op, err)
	}

	principal := Principal{ID: cred.PrincipalID, Email: cred.Email, DisplayName: cred.DisplayName}
	session, err := p.issue(principal)
	if err != nil {
		return nil, types.Backend(op, err)
	}

	p.log.WithField("principal", principal.ID).Info("Local account created")
	p.emit(SessionEvent{Type: SignedIn, PrincipalID: principal.ID, At: p.now()})
	return session, nil
}

// SignOut implements Provider. Signing out an unknown or expired token is a no-op.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil || p.isRevoked(claims.ID) {
		return nil
	}
	p.revoke(claims)
	p.emit(SessionEvent{Type: SignedOut, PrincipalID: claims.Subject, At: p.now()})
	return nil
}

// Refresh implements Provider. The old token is revoked.
func (p *LocalProvider) Refresh(ctx context.Context, token string) (*Session, error) {
	const op = "auth.Refresh"

	claims, err := p.parse(token)
	if err != nil || p.isRevoked(claims.ID) {
		return nil, types.NewError(types.KindNotAuthenticated, op, "session expired")
	}

	session, err := p.issue(*claimsPrincipal(claims))
	if err != nil {
		return nil, types.Backend(op, err)
	}
	p.revoke(claims)

	p.emit(SessionEvent{Type: TokenRefreshed, PrincipalID: claims.Subject, At: p.now()})
	return session, nil
}

func (p *LocalProvider) issue(principal Principal) (*Session, error) {
	now := p.now()
	expires := now.Add(p.ttl)
	claims := localClaims{
		Email: principal.Email,
		Name:  principal.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   principal.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expires, Principal: principal}, nil
}

func (p *LocalProvider) parse(token string) (*localClaims, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims := &localClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

func (p *LocalProvider) isRevoked(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[id]
	return ok
}

// revoke records the token id until its expiry and drops entries that have expired.
func (p *LocalProvider) revoke(claims *localClaims) {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
	p.revoked[claims.ID] = claims.ExpiresAt.Time
}

func claimsPrincipal(claims *localClaims) *Principal {
	return &Principal{ID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
