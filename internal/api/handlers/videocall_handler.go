package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/videocall"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

type VideoCallHandler struct {
	service *videocall.Service
}

func NewVideoCallHandler(service *videocall.Service) *VideoCallHandler {
	return &VideoCallHandler{service: service}
}

func (h *VideoCallHandler) InitiateCall(c *fiber.Ctx) error {
	var req struct {
		ConversationID int64  `json:"conversation_id"`
		InitiatedBy    string `json:"initiated_by"`
		EmergencyID    string `json:"emergency_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ConversationID == 0 || req.InitiatedBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "conversation_id and initiated_by are required",
		})
	}

	session, err := h.service.InitiateCall(c.Context(), req.ConversationID, req.InitiatedBy)
	if err != nil {
		logger.Error("Failed to initiate call", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initiate call",
		})
	}

	// Emergency calls link back to their emergency so a later rejection can
	// resolve it.
	if req.EmergencyID != "" {
		if err := h.service.AttachToEmergency(c.Context(), req.EmergencyID, session.Call.ID); err != nil {
			logger.Error("Failed to link call to emergency",
				zap.String("emergency_id", req.EmergencyID),
				zap.Int64("call_id", session.Call.ID),
				zap.Error(err))
		}
	}

	return c.JSON(session)
}

func (h *VideoCallHandler) AcceptCall(c *fiber.Ctx) error {
	var req struct {
		CallID      int64  `json:"call_id"`
		Participant string `json:"participant"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.CallID == 0 || req.Participant == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "call_id and participant are required",
		})
	}

	session, err := h.service.AcceptCall(c.Context(), req.CallID, req.Participant)
	if err != nil {
		logger.Error("Failed to accept call",
			zap.Int64("call_id", req.CallID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept call",
		})
	}

	return c.JSON(session)
}

func (h *VideoCallHandler) EndCall(c *fiber.Ctx) error {
	callID, ok := parseCallID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "call_id is required",
		})
	}

	if err := h.service.EndCall(c.Context(), callID); err != nil {
		logger.Error("Failed to end call", zap.Int64("call_id", callID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to end call",
		})
	}
	return c.JSON(fiber.Map{"status": "ended"})
}

func (h *VideoCallHandler) RejectCall(c *fiber.Ctx) error {
	callID, ok := parseCallID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "call_id is required",
		})
	}

	if err := h.service.RejectCall(c.Context(), callID); err != nil {
		logger.Error("Failed to reject call", zap.Int64("call_id", callID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reject call",
		})
	}
	return c.JSON(fiber.Map{"status": "missed"})
}

func parseCallID(c *fiber.Ctx) (int64, bool) {
	var req struct {
		CallID int64 `json:"call_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CallID == 0 {
		return 0, false
	}
	return req.CallID, true
}
