package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/service"
)

type PlatformHandler struct {
	ps service.PlatformService
}

func NewPlatformHandler(ps service.PlatformService) *PlatformHandler {
	return &PlatformHandler{ps: ps}
}

// ListPlatforms reports which platforms have a configured client and their
// character limits.
func (h *PlatformHandler) ListPlatforms(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.ps.Platforms())
}

func (h *PlatformHandler) CharacterLimits(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.CharacterLimits)
}
