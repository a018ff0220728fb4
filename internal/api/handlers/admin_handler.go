package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Sweeper runs one full pass of a scheduled job on demand.
type Sweeper interface {
	RunHourlySweep(ctx context.Context) error
}

// Drainer empties the pending emergency-check queue.
type Drainer interface {
	Drain(ctx context.Context)
}

// AdminHandler exposes the scheduled sweeps as synchronous triggers, for
// operators and integration tests.
type AdminHandler struct {
	alertSweep     Sweeper
	emergencySweep Sweeper
	queue          Drainer
}

func NewAdminHandler(alertSweep, emergencySweep Sweeper, queue Drainer) *AdminHandler {
	return &AdminHandler{
		alertSweep:     alertSweep,
		emergencySweep: emergencySweep,
		queue:          queue,
	}
}

func (h *AdminHandler) RunAlertCheck(c *fiber.Ctx) error {
	if err := h.alertSweep.RunHourlySweep(c.Context()); err != nil {
		logger.Error("Manual alert sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Alert sweep failed",
		})
	}
	return c.JSON(fiber.Map{"status": "completed"})
}

func (h *AdminHandler) RunEmergencyCheck(c *fiber.Ctx) error {
	if err := h.emergencySweep.RunHourlySweep(c.Context()); err != nil {
		logger.Error("Manual emergency sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Emergency sweep failed",
		})
	}
	return c.JSON(fiber.Map{"status": "completed"})
}

func (h *AdminHandler) DrainQueue(c *fiber.Ctx) error {
	h.queue.Drain(c.Context())
	return c.JSON(fiber.Map{"status": "completed"})
}
