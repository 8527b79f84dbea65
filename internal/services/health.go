package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered.
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck checks the database, and the Authorizer when it is the configured auth provider.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	var failures []string

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		failures = append(failures, fmt.Sprintf("Database connection error: %v", err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		failures = append(failures, fmt.Sprintf("Database ping failed: %v", err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBAppDatabase
	}

	if cfg.AuthProvider == "authorizer" {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.Details["authorizer_error"] = err.Error()
			failures = append(failures, fmt.Sprintf("Authorizer ping failed: %v", err))
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	} else {
		result.Authorizer = "not_used"
		result.Details["auth_provider"] = cfg.AuthProvider
	}

	if len(failures) > 0 {
		result.Status = "unhealthy"
		result.ErrorMessage = strings.Join(failures, "; ")
		log.WithField("error", result.ErrorMessage).Warn("Health check failed")
	} else {
		log.Debug("Health check passed - all systems operational")
	}

	return result
}
