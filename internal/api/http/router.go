package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Forecasts      *handlers.ForecastsHandler
	Schedules      *handlers.SchedulesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	forecasts := api.Group("/forecasts")
	forecasts.Get("", auth.RequireReader(), cfg.Forecasts.List)
	forecasts.Post("/generate", auth.RequireWriter(), cfg.Forecasts.Generate)
	forecasts.Post("/refresh", auth.RequireWriter(), cfg.Forecasts.Refresh)

	schedules := api.Group("/schedules")
	schedules.Post("", auth.RequireWriter(), cfg.Schedules.Create)
	schedules.Get("/:id", auth.RequireReader(), cfg.Schedules.Get)
	schedules.Get("/:id/shifts", auth.RequireReader(), cfg.Schedules.Shifts)
	schedules.Post("/:id/reoptimize", auth.RequireWriter(), cfg.Schedules.Reoptimize)
}
