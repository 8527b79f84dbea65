// connection.go
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

package database

import (
	"fmt"
	"strings"
	"time"

	glebarez "github.com/glebarez/sqlite"
	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// credentials selects which database account a pool connects with.
type credentials struct {
	user     string
	password string
	limit    int
	label    string
}

// Connect establishes the app (public read) database connection based on the configured DB_TYPE
func Connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	return open(cfg, log, credentials{
		user:     cfg.DBAppUser,
		password: cfg.DBAppPassword,
		limit:    cfg.DBAppConnectionLimit,
		label:    "app",
	})
}

// ConnectUser establishes the owner database connection (with different credentials).
// Mutations and migrations run on this pool.
func ConnectUser(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	return open(cfg, log, credentials{
		user:     cfg.DBUser,
		password: cfg.DBPassword,
		limit:    cfg.DBConnectionLimit,
		label:    "user",
	})
}

// dialector builds the GORM dialector for the configured DB_TYPE and account.
func dialector(cfg *config.Config, user, password string) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			user,
			password,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBAppDatabase,
		)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			user,
			password,
			cfg.DBAppDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// Pure Go driver. DBAppDatabase is the file path, there are no separate accounts
		return glebarez.Open(cfg.DBAppDatabase), nil

	case "sqlite3":
		// cgo driver
		return sqlite.Open(cfg.DBAppDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			user,
			password,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBAppDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

func open(cfg *config.Config, log *logrus.Logger, creds credentials) (*gorm.DB, error) {
	d, err := dialector(cfg, creds.user, creds.password)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: NewGormLogger(log, cfg.DBLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", creds.label, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	limit := creds.limit
	if cfg.IsSQLite() || limit < 1 {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))

	log.WithFields(logrus.Fields{
		"type":     cfg.DBType,
		"database": cfg.DBAppDatabase,
		"pool":     creds.label,
	}).Info("Connected to database")

	return db, nil
}

// NewGormLogger routes GORM's SQL logging through logrus at the given level name.
func NewGormLogger(log *logrus.Logger, level string) logger.Interface {
	var lvl logger.LogLevel
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	default:
		lvl = logger.Warn
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Restaurant{},
		&models.MenuSection{},
		&models.MenuItem{},
		&models.Credential{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
