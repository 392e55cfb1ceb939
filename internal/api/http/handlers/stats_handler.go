package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/futuremakers/feedback-service/internal/service"
)

// StatsHandler exposes aggregate reporting endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Stats GET /stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// DetailedStats GET /stats/full.
func (h *StatsHandler) DetailedStats(c *fiber.Ctx) error {
	stats, err := h.stats.DetailedStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
