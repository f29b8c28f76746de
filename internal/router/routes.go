package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/auth"
	"github.com/octobees/contact-finder/internal/config"
	"github.com/octobees/contact-finder/internal/handler"
	middlewarepkg "github.com/octobees/contact-finder/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Contacts *handler.ContactsHandler
	Ingest   *handler.IngestHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handlers.Health.Health)
	e.POST("/auth/login", handlers.Auth.Login)

	api := e.Group("/api/v1", middlewarepkg.ClientRateLimiter(cfg.RateLimitAPI))
	api.GET("/search", handlers.Contacts.Search)
	api.GET("/get_by_id", handlers.Contacts.GetByID)
	api.GET("/contacts/:id", handlers.Contacts.GetByID)

	admin := e.Group("/admin", middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(auth.RoleAdmin))
	admin.POST("/ingest/upload", handlers.Ingest.Upload)
	admin.POST("/ingest/run", handlers.Ingest.Run)
}
