package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/futuremakers/feedback-service/internal/api/http/handlers"
	"github.com/futuremakers/feedback-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Stats   *handlers.StatsHandler
	Chat    *handlers.ChatHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/code/:code", cfg.Tickets.GetTicketByCode)
	tickets.Put("/:id", cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/reply", cfg.Tickets.Reply)

	app.Get("/stats", cfg.Stats.Stats)
	app.Get("/stats/full", cfg.Stats.DetailedStats)

	chat := app.Group("/chat")
	chat.Post("/messages", cfg.Chat.Message)
	chat.Post("/cancel", cfg.Chat.Cancel)
}
