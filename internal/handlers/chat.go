package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/logging"
	"alumnihuddle/internal/middleware"
	"alumnihuddle/internal/services"
)

// ChatHandler handles chat completion requests
type ChatHandler struct {
	chat *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Complete forwards a completion to the upstream provider with the huddle's
// mentor directory injected into the system prompt.
func (h *ChatHandler) Complete(c *fiber.Ctx) error {
	var req services.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Messages are required",
		})
	}

	huddle := middleware.HuddleFromCtx(c)
	if huddle != nil {
		logging.WithHuddle(huddle.ID, huddle.Slug).Debug("chat completion", "model", req.Model)
	}

	status, body, err := h.chat.Complete(c.Context(), huddle, req)
	if err != nil {
		log.Printf("❌ Chat completion failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Chat provider is temporarily unavailable",
		})
	}

	c.Set(fiber.HeaderContentType, "application/json")
	return c.Status(status).Send(body)
}
