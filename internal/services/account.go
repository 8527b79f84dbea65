package services

import (
	"context"
	"strings"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/validation"
	"github.com/sirupsen/logrus"
)

// Account is a signed in principal with its profile.
type Account struct {
	Principal auth.Principal  `json:"user"`
	Profile   *models.Profile `json:"profile"`
	Token     string          `json:"token,omitempty"`
}

// AccountService runs registration and sign in against the auth provider and keeps
// profiles in step with it.
type AccountService struct {
	provider auth.Provider
	profiles *ProfileStore
	validate *validation.Validator
	log      *logrus.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(provider auth.Provider, profiles *ProfileStore, validate *validation.Validator, log *logrus.Logger) *AccountService {
	return &AccountService{provider: provider, profiles: profiles, validate: validate, log: log}
}

// Register validates the form locally, then signs up and creates the profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	const op = "accounts.Register"

	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	session, err := s.provider.SignUp(ctx, email, in.Password, auth.ProfileData{
		DisplayName: strings.TrimSpace(in.Name),
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}

	return s.open(ctx, op, session)
}

// Login signs in and returns the account, including the owned restaurant id if any.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Account, error) {
	const op = "accounts.Login"

	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	session, err := s.provider.SignIn(ctx, strings.ToLower(strings.TrimSpace(in.Email)), in.Password)
	if err != nil {
		return nil, types.Backend(op, err)
	}

	return s.open(ctx, op, session)
}

// Logout ends the session named by token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if err := s.provider.SignOut(ctx, token); err != nil {
		return types.Backend("accounts.Logout", err)
	}
	return nil
}

// Refresh exchanges token for a fresh session.
func (s *AccountService) Refresh(ctx context.Context, token string) (*Account, error) {
	const op = "accounts.Refresh"

	if token == "" {
		return nil, types.NewError(types.KindNotAuthenticated, op, "sign in required")
	}
	session, err := s.provider.Refresh(ctx, token)
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return s.open(ctx, op, session)
}

// Me returns the principal with its profile.
func (s *AccountService) Me(ctx context.Context, principal *auth.Principal) (*Account, error) {
	const op = "accounts.Me"

	if principal == nil {
		return nil, types.NewError(types.KindNotAuthenticated, op, "sign in required")
	}
	profile, err := s.profiles.EnsureProfile(ctx, *principal)
	if err != nil {
		return nil, err
	}
	return &Account{Principal: *principal, Profile: profile}, nil
}

func (s *AccountService) open(ctx context.Context, op string, session *auth.Session) (*Account, error) {
	profile, err := s.profiles.EnsureProfile(ctx, session.Principal)
	if err != nil {
		s.log.WithError(err).WithField("principal", session.Principal.ID).Error("Failed to ensure profile")
		return nil, types.Backend(op, err)
	}
	return &Account{Principal: session.Principal, Profile: profile, Token: session.Token}, nil
}
