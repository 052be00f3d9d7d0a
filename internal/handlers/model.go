package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/models"
	"alumnihuddle/internal/services"
)

// ModelHandler serves the model listing. The response deliberately includes
// every active model; the filter middleware narrows it to the requesting
// huddle's model afterwards.
type ModelHandler struct {
	huddleModels *services.HuddleModelService
}

// NewModelHandler creates a new model handler
func NewModelHandler(huddleModels *services.HuddleModelService) *ModelHandler {
	return &ModelHandler{huddleModels: huddleModels}
}

// List returns all active models in OpenAI listing shape
func (h *ModelHandler) List(c *fiber.Ctx) error {
	active, err := h.huddleModels.GetActiveModels()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch models",
		})
	}

	if active == nil {
		active = []models.Model{}
	}

	return c.JSON(fiber.Map{
		"object": "list",
		"data":   active,
	})
}
