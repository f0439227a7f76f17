package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// ParticipationHandler drives the join-request workflow of events.
type ParticipationHandler struct {
	service service.ParticipationService
	logger  zerolog.Logger
}

// NewParticipationHandler constructs the handler.
func NewParticipationHandler(service service.ParticipationService, logger zerolog.Logger) *ParticipationHandler {
	return &ParticipationHandler{
		service: service,
		logger:  logger.With().Str("component", "participation_handler").Logger(),
	}
}

// Register binds participation routes under /events.
func (h *ParticipationHandler) Register(router fiber.Router) {
	router.Get("/upcoming", h.upcoming)
	router.Get("/:id/participation", h.status)
	router.Post("/:id/join", h.join)
	router.Delete("/:id/join", h.cancel)
	router.Post("/:id/leave", h.leave)
	router.Get("/:id/requests", h.requests)
	router.Post("/:id/requests/:userId/accept", h.accept)
	router.Post("/:id/requests/:userId/reject", h.reject)
	router.Delete("/:id/participants/:userId", h.remove)
}

type participationAction func(c *fiber.Ctx, session service.Session) (dto.ParticipationStatusResponse, error)

func (h *ParticipationHandler) respond(c *fiber.Ctx, action string, message string, run participationAction) error {
	status, err := run(c, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, action)
	}
	return utils.SendSuccess(c, message, status)
}

func (h *ParticipationHandler) status(c *fiber.Ctx) error {
	return h.respond(c, "participation status", "participation status", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.Status(requestContext(c), s, c.Params("id"))
	})
}

func (h *ParticipationHandler) join(c *fiber.Ctx) error {
	return h.respond(c, "request join", "join requested", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.RequestJoin(requestContext(c), s, c.Params("id"))
	})
}

func (h *ParticipationHandler) cancel(c *fiber.Ctx) error {
	return h.respond(c, "cancel join", "join request cancelled", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.Cancel(requestContext(c), s, c.Params("id"))
	})
}

func (h *ParticipationHandler) leave(c *fiber.Ctx) error {
	return h.respond(c, "leave event", "left event", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.Leave(requestContext(c), s, c.Params("id"))
	})
}

func (h *ParticipationHandler) accept(c *fiber.Ctx) error {
	return h.respond(c, "accept participant", "participant accepted", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.Accept(requestContext(c), s, c.Params("id"), c.Params("userId"))
	})
}

func (h *ParticipationHandler) reject(c *fiber.Ctx) error {
	return h.respond(c, "reject participant", "participant rejected", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.Reject(requestContext(c), s, c.Params("id"), c.Params("userId"))
	})
}

func (h *ParticipationHandler) remove(c *fiber.Ctx) error {
	return h.respond(c, "remove participant", "participant removed", func(c *fiber.Ctx, s service.Session) (dto.ParticipationStatusResponse, error) {
		return h.service.RemoveParticipant(requestContext(c), s, c.Params("id"), c.Params("userId"))
	})
}

func (h *ParticipationHandler) upcoming(c *fiber.Ctx) error {
	events, err := h.service.ListUpcoming(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list upcoming events")
	}
	return utils.SendSuccess(c, "upcoming events", events)
}

func (h *ParticipationHandler) requests(c *fiber.Ctx) error {
	requests, err := h.service.ListRequests(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "list join requests")
	}
	return utils.SendSuccess(c, "join requests", requests)
}
