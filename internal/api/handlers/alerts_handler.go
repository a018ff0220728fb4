package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// AlertStore is the slice of persistence the alert endpoints touch.
type AlertStore interface {
	AcknowledgeAlert(ctx context.Context, alertID, acknowledgedBy string) error
}

type AlertsHandler struct {
	store AlertStore
}

func NewAlertsHandler(store AlertStore) *AlertsHandler {
	return &AlertsHandler{store: store}
}

// Acknowledge marks an open alert as seen by a caregiver.
func (h *AlertsHandler) Acknowledge(c *fiber.Ctx) error {
	alertID := c.Params("id")
	if alertID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "alert id is required",
		})
	}

	var req struct {
		AcknowledgedBy string `json:"acknowledged_by"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.AcknowledgedBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "acknowledged_by is required",
		})
	}

	if err := h.store.AcknowledgeAlert(c.Context(), alertID, req.AcknowledgedBy); err != nil {
		logger.Error("Failed to acknowledge alert",
			zap.String("alert_id", alertID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to acknowledge alert",
		})
	}

	return c.JSON(fiber.Map{"status": "acknowledged"})
}
