// server.go
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

package server

import (
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/handlers"
	"github.com/localnerve/sharmers-menus/internal/middleware"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "github.com/localnerve/sharmers-menus/docs/api" // Swagger docs
)

// Dependencies are the collaborators the HTTP server is built from.
type Dependencies struct {
	Config *config.Config
	// AppDB serves public reads, UserDB owner reads and writes.
	AppDB    *gorm.DB
	UserDB   *gorm.DB
	Provider auth.Provider
	Log      *logrus.Logger
	// Registry receives the HTTP metrics. Defaults to the global registerer.
	Registry prometheus.Registerer
}

// Server is the configured Fiber app and the session resolver it owns.
type Server struct {
	App      *fiber.App
	Resolver *auth.Resolver
}

// New wires services, middleware and routes.
func New(deps Dependencies) *Server {
	cfg := deps.Config
	log := deps.Log

	validate := validation.New()
	profiles := services.NewProfileStore(deps.UserDB, log)
	restaurants := services.NewRestaurantService(deps.UserDB, profiles, validate, log)
	sections := services.NewSectionService(deps.UserDB, validate, log)
	items := services.NewItemService(deps.UserDB, validate, log)
	composer := services.NewPublicMenuComposer(deps.AppDB, cfg.PublicBaseURL, log)
	accounts := services.NewAccountService(deps.Provider, profiles, validate, log)
	resolver := auth.NewResolver(deps.Provider, log)

	app := fiber.New(fiber.Config{
		AppName:      "sharmers-menus",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    1 << 20,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Version",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	// Prometheus metrics
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	prom := fiberprometheus.NewWithRegistry(registry, "sharmers-menus", "menus", "http", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	if cfg.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: time.Duration(cfg.RateLimitWindow) * time.Second,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, slow down")
			},
		}))
	}

	cookie := cfg.SessionCookie
	optional := middleware.OptionalSession(resolver, cookie)
	required := middleware.RequireSession(resolver, cookie)

	healthHandler := &handlers.HealthHandler{Config: cfg, DB: deps.AppDB, Log: log}
	authHandler := &handlers.AuthHandler{
		Accounts:     accounts,
		CookieName:   cookie,
		CookieTTL:    cfg.JWTTTL,
		SecureCookie: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
	}
	restaurantHandler := &handlers.RestaurantHandler{Restaurants: restaurants}
	menuHandler := &handlers.MenuHandler{Sections: sections, Items: items}
	publicHandler := &handlers.PublicHandler{Composer: composer}

	api.Get("/health", healthHandler.Health)

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", optional, authHandler.Logout)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Get("/me", required, authHandler.Me)

	// Restaurant routes (public reads, owner writes)
	api.Get("/restaurants", restaurantHandler.List)
	api.Get("/restaurants/mine", required, restaurantHandler.Mine)
	api.Get("/restaurants/:id", restaurantHandler.Get)
	api.Post("/restaurants", required, restaurantHandler.Create)
	api.Put("/restaurants/:id", required, restaurantHandler.Update)
	api.Post("/restaurants/:id/link", required, restaurantHandler.Link)

	// Menu routes
	api.Get("/restaurants/:id/sections", menuHandler.ListSections)
	api.Post("/restaurants/:id/sections", required, menuHandler.CreateSection)
	api.Put("/sections/:id", required, menuHandler.UpdateSection)
	api.Delete("/sections/:id", required, menuHandler.DeleteSection)
	api.Get("/sections/:id/items", menuHandler.ListItems)
	api.Post("/sections/:id/items", required, menuHandler.CreateItem)
	api.Put("/items/:id", required, menuHandler.UpdateItem)
	api.Patch("/items/:id/availability", required, menuHandler.SetAvailability)
	api.Delete("/items/:id", required, menuHandler.DeleteItem)

	// Public menu routes (no session)
	api.Get("/public/menus/:id", publicHandler.Menu)
	api.Get("/public/menus/:id/pdf", publicHandler.MenuPDF)

	// 404 handler
	app.Use(handlers.NotFound)

	log.WithFields(logrus.Fields{
		"authProvider": cfg.AuthProvider,
		"database":     cfg.DBType,
	}).Info("Routes registered")

	return &Server{App: app, Resolver: resolver}
}

// Close releases the resolver's provider subscription.
func (s *Server) Close() {
	s.Resolver.Close()
}
