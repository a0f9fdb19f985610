package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"facturation-backend/middlewares"
	"facturation-backend/services"
)

// AIController fronts the writing assistant. Failures degrade to usable
// fallbacks instead of erroring, so the editor never blocks on the model.
type AIController struct {
	assistant *services.Assistant
	log       zerolog.Logger
}

func NewAIController(a *services.Assistant, log zerolog.Logger) *AIController {
	return &AIController{assistant: a, log: log.With().Str("component", "ai").Logger()}
}

type improveDTO struct {
	Text string `json:"text" validate:"required"`
}

// ImproveDescription rewrites a line item description into professional
// French wording. On failure the original text comes back unchanged.
func (ai *AIController) ImproveDescription(c *fiber.Ctx) error {
	var data improveDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"text": ai.assistant.ImproveDescription(c.Context(), data.Text),
	})
}

type closingNoteDTO struct {
	ClientName string `json:"clientName"`
}

// GenerateClosingNote produces a short closing note for the document footer.
func (ai *AIController) GenerateClosingNote(c *fiber.Ctx) error {
	var data closingNoteDTO
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return c.JSON(fiber.Map{
		"note": ai.assistant.GenerateClosingNote(c.Context(), data.ClientName),
	})
}
