package handlers

import (
	"payflow/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service liveness and dependency status.
type HealthHandler struct {
	cache *cache.Service
}

func NewHealthHandler(cacheSvc *cache.Service) *HealthHandler {
	return &HealthHandler{cache: cacheSvc}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	redisStatus := "connected"
	if h.cache != nil {
		if err := h.cache.HealthCheck(c.Context()); err != nil {
			redisStatus = "unavailable"
		}
	} else {
		redisStatus = "disabled"
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "payflow",
		"version": "1.0.0",
		"services": fiber.Map{
			"redis": redisStatus,
		},
	})
}
