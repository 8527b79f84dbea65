package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/database"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/server"
)

// @title Sharmers Menus API
// @version 1.0.0
// @description Restaurant menu management data and authorization service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/sharmers-menus
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Connect to database (app pool)
	appDB, err := database.Connect(cfg, logr)
	if err != nil {
		logr.Fatalf("Failed to connect to app database: %v", err)
	}
	defer database.Close(appDB)

	// Connect to database (user pool)
	userDB, err := database.ConnectUser(cfg, logr)
	if err != nil {
		logr.Fatalf("Failed to connect to user database: %v", err)
	}
	defer database.Close(userDB)

	// Run auto-migrations as the owner
	if err := database.AutoMigrate(userDB); err != nil {
		logr.Fatalf("Failed to run migrations: %v", err)
	}

	provider, err := auth.NewProvider(cfg, userDB, logr)
	if err != nil {
		logr.Fatalf("Failed to create auth provider: %v", err)
	}

	srv := server.New(server.Dependencies{
		Config:   cfg,
		AppDB:    appDB,
		UserDB:   userDB,
		Provider: provider,
		Log:      logr,
	})
	defer srv.Close()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logr.Info("Gracefully shutting down...")
		_ = srv.App.Shutdown()
	}()

	// Start server
	logr.Infof("Starting server on port %s", cfg.Port)
	if err := srv.App.Listen(":" + cfg.Port); err != nil {
		logr.Fatalf("Failed to start server: %v", err)
	}

	logr.Info("Server stopped")
}
