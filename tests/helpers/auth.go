package helpers

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/authorizerdev/authorizer-go"
	"github.com/google/uuid"
	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"gorm.io/gorm"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password with a capital and special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < 10; i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// UniqueEmail returns an address no other test run will use.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// NewLocalProvider builds a local auth provider with a cheap bcrypt cost.
func NewLocalProvider(t *testing.T, db *gorm.DB) *auth.LocalProvider {
	t.Helper()
	cfg := TestConfig()
	return auth.NewLocalProvider(db, cfg.JWTSecret, cfg.JWTTTL, logger.Discard(), auth.WithHashCost(4))
}

// SignUpLocal registers a principal with the local provider and returns its session.
func SignUpLocal(t *testing.T, provider auth.Provider, email string) *auth.Session {
	t.Helper()
	session, err := provider.SignUp(context.Background(), email, GeneratePassword(), auth.ProfileData{DisplayName: "Owner"})
	if err != nil {
		t.Fatalf("Failed to sign up %s: %v", email, err)
	}
	return session
}

// AcquireAccount signs an owner up with Authorizer, or reuses an existing account,
// and returns an access token from a fresh login.
func AcquireAccount(t *testing.T, authzURL, clientID, email, password string, roles []string) string {
	t.Helper()

	client, err := authorizer.NewAuthorizerClient(clientID, authzURL, "", nil)
	if err != nil {
		t.Fatalf("Failed to create authorizer client: %v", err)
	}

	givenName := "Owner"
	if _, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		GivenName:       &givenName,
		Roles:           stringPtrs(roles),
	}); err != nil {
		t.Logf("Signup of %s failed, trying login: %v", email, err)
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Login of %s failed: %v", email, err)
	}
	if res.AccessToken == nil || *res.AccessToken == "" {
		t.Fatalf("Login of %s returned no access token", email)
	}
	return *res.AccessToken
}

func stringPtrs(values []string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}
