package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/clientdesk/backend/internal/database"
	"github.com/clientdesk/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	db      database.Pinger
	timeout time.Duration
}

func NewHealthHandler(db database.Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 3 * time.Second}
}

// Check pings the database. Unlike other endpoints it echoes the raw error,
// since operators are its only audience.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	info := dto.HealthInfo{URL: c.Protocol() + "://" + c.Hostname() + c.Path()}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.HealthResponse{
			Message: "Database connection failed",
			Error:   err.Error(),
			Info:    info,
		})
	}

	return c.JSON(dto.HealthResponse{
		Message: "Server Okay and database connection OK",
		Info:    info,
	})
}
