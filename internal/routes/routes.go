package routes

import (
	"time"

	"github.com/clientdesk/backend/internal/config"
	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/handlers"
	"github.com/clientdesk/backend/internal/middleware"
	"github.com/clientdesk/backend/internal/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Clients *handlers.ClientHandler
	Health  *handlers.HealthHandler
	Metrics fiber.Handler
}

func Setup(app *fiber.App, cfg *config.Config, issuer *token.Issuer, h Handlers) {
	app.Get("/actuator/health", h.Health.Check)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	// Auth: public apart from the shared API key, rate limited per IP
	auth := app.Group("/auth",
		limiter.New(limiter.Config{
			Max:               cfg.AuthRateLimit,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
					Error: true, Message: "Too many requests, please try again later",
				})
			},
		}),
		middleware.APIKey(cfg.APIKeyHeader, cfg.APIKey),
	)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	admin := app.Group("/admin", middleware.JWTProtected(issuer), middleware.AdminRequired())
	admin.Get("/clients", h.Clients.List)
	admin.Put("/clients/:id", h.Clients.Update)
	admin.Delete("/clients/:id", h.Clients.Delete)

	app.Use(handlers.NotFound)
}
