package auth

import (
	"fmt"

	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewProvider selects the provider named by AUTH_PROVIDER.
// db is only used by the local provider, for its credentials table.
func NewProvider(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (Provider, error) {
	switch cfg.AuthProvider {
	case "authorizer":
		return NewAuthorizerProvider(cfg.AuthzURL, cfg.AuthzClientID, cfg.PublicBaseURL, cfg.SessionCookie, log), nil
	case "local":
		return NewLocalProvider(db, cfg.JWTSecret, cfg.JWTTTL, log), nil
	}
	return nil, fmt.Errorf("unsupported auth provider: %s", cfg.AuthProvider)
}
