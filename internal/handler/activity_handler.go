package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// ActivityHandler lists recorded hikes, their totals and earned badges.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register binds activity routes under /activities.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.stats)
	router.Get("/badges", h.badges)
	router.Post("/badges/evaluate", h.evaluate)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activities, err := h.service.List(requestContext(c), sessionFromContext(c), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "list activities")
	}
	return utils.SendSuccess(c, "activities", activities)
}

func (h *ActivityHandler) stats(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.UserID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	stats, err := h.service.Stats(requestContext(c), session.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "activity stats")
	}
	return utils.SendSuccess(c, "activity stats", stats)
}

func (h *ActivityHandler) badges(c *fiber.Ctx) error {
	progress, err := h.service.Badges(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "badge progress")
	}
	return utils.SendSuccess(c, "badges", progress)
}

func (h *ActivityHandler) evaluate(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if session.UserID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	progress, err := h.service.EvaluateBadges(requestContext(c), session.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "evaluate badges")
	}
	return utils.SendSuccess(c, "badges evaluated", progress)
}
