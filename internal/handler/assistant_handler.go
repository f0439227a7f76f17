package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// AssistantHandler relays questions to HikeMate.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register wires assistant routes.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/messages", h.ask)
}

func (h *AssistantHandler) ask(c *fiber.Ctx) error {
	var payload dto.AssistantMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	reply, err := h.service.Ask(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "assistant")
	}
	return utils.SendSuccess(c, "assistant reply", reply)
}
