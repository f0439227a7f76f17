package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// TrackingHandler drives a live hike: start, position samples, snapshot and stop.
type TrackingHandler struct {
	service service.TrackingService
	logger  zerolog.Logger
}

// NewTrackingHandler constructs the handler.
func NewTrackingHandler(service service.TrackingService, logger zerolog.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger.With().Str("component", "tracking_handler").Logger(),
	}
}

// Register binds tracking routes under /tracking.
func (h *TrackingHandler) Register(router fiber.Router) {
	router.Post("/start", h.start)
	router.Post("/samples", h.sample)
	router.Get("", h.snapshot)
	router.Post("/stop", h.stop)
}

func (h *TrackingHandler) start(c *fiber.Ctx) error {
	snapshot, err := h.service.Start(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "start tracking")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "tracking started", snapshot)
}

func (h *TrackingHandler) sample(c *fiber.Ctx) error {
	var payload dto.TrackingSampleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	snapshot, err := h.service.Sample(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "tracking sample")
	}
	return utils.SendSuccess(c, "sample recorded", snapshot)
}

func (h *TrackingHandler) snapshot(c *fiber.Ctx) error {
	snapshot, err := h.service.Snapshot(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "tracking snapshot")
	}
	return utils.SendSuccess(c, "tracking snapshot", snapshot)
}

func (h *TrackingHandler) stop(c *fiber.Ctx) error {
	var payload dto.TrackingStopRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	activity, err := h.service.Stop(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "stop tracking")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "hike saved", activity)
}
