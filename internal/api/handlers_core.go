package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/db"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Status reports readiness. It is informational only.
func (handler *Handler) Status(c *fiber.Ctx) error {
	payload := fiber.Map{
		"status":   "ok",
		"database": "ok",
		"version":  handler.version,
	}
	if err := db.Ping(handler.db); err != nil {
		handler.logger.Warn("database ping failed", zap.Error(err))
		payload["status"] = "degraded"
		payload["database"] = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(payload)
	}
	return c.JSON(payload)
}
