package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/database"
	"alumnihuddle/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *database.DB
	redis *services.RedisService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, redis *services.RedisService) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "unavailable"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "unavailable"
		}
	}

	status := "healthy"
	if dbStatus != "ok" {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"database":  dbStatus,
		"redis":     redisStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
