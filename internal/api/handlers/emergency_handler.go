package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/emergency"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

type EmergencyHandler struct {
	service *emergency.Service
}

func NewEmergencyHandler(service *emergency.Service) *EmergencyHandler {
	return &EmergencyHandler{service: service}
}

// CheckPatient runs an on-demand emergency evaluation for one patient.
func (h *EmergencyHandler) CheckPatient(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	result, err := h.service.CheckAndTrigger(c.Context(), req.Email)
	if err != nil {
		logger.Error("Emergency check failed",
			zap.String("email", req.Email),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Emergency check failed",
		})
	}

	resp := fiber.Map{
		"triggered":       result.Triggered,
		"reason":          result.Reason,
		"abnormal_vitals": result.AbnormalVitals,
	}
	if result.Emergency != nil {
		resp["emergency_id"] = result.Emergency.ID
	}
	return c.JSON(resp)
}

// Resolve closes an active emergency.
func (h *EmergencyHandler) Resolve(c *fiber.Ctx) error {
	emergencyID := c.Params("id")
	if emergencyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "emergency id is required",
		})
	}

	if err := h.service.Resolve(c.Context(), emergencyID); err != nil {
		logger.Error("Failed to resolve emergency",
			zap.String("emergency_id", emergencyID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve emergency",
		})
	}

	return c.JSON(fiber.Map{"status": "resolved"})
}
