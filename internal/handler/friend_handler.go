package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// FriendHandler manages friend requests and friend lists.
type FriendHandler struct {
	service service.FriendService
	logger  zerolog.Logger
}

// NewFriendHandler constructs the handler.
func NewFriendHandler(service service.FriendService, logger zerolog.Logger) *FriendHandler {
	return &FriendHandler{
		service: service,
		logger:  logger.With().Str("component", "friend_handler").Logger(),
	}
}

// Register binds friendship routes under /friends.
func (h *FriendHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/requests/received", h.received)
	router.Get("/requests/sent", h.sent)
	router.Get("/status/:userId", h.status)
	router.Post("/requests/:userId", h.send)
	router.Delete("/requests/:userId", h.cancel)
	router.Post("/requests/:userId/accept", h.accept)
	router.Post("/requests/:userId/decline", h.decline)
	router.Delete("/:userId", h.remove)
}

func (h *FriendHandler) list(c *fiber.Ctx) error {
	friends, err := h.service.ListFriends(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list friends")
	}
	return utils.SendSuccess(c, "friends", friends)
}

func (h *FriendHandler) received(c *fiber.Ctx) error {
	requests, err := h.service.ListReceived(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list received requests")
	}
	return utils.SendSuccess(c, "received requests", requests)
}

func (h *FriendHandler) sent(c *fiber.Ctx) error {
	requests, err := h.service.ListSent(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list sent requests")
	}
	return utils.SendSuccess(c, "sent requests", requests)
}

func (h *FriendHandler) status(c *fiber.Ctx) error {
	status, err := h.service.Status(requestContext(c), sessionFromContext(c), c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, err, "friend status")
	}
	return utils.SendSuccess(c, "friend status", status)
}

func (h *FriendHandler) send(c *fiber.Ctx) error {
	request, err := h.service.SendRequest(requestContext(c), sessionFromContext(c), c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, err, "send friend request")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "friend request sent", request)
}

func (h *FriendHandler) cancel(c *fiber.Ctx) error {
	if err := h.service.CancelRequest(requestContext(c), sessionFromContext(c), c.Params("userId")); err != nil {
		return respondError(c, h.logger, err, "cancel friend request")
	}
	return utils.SendSuccess(c, "friend request cancelled", nil)
}

func (h *FriendHandler) accept(c *fiber.Ctx) error {
	status, err := h.service.AcceptRequest(requestContext(c), sessionFromContext(c), c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, err, "accept friend request")
	}
	return utils.SendSuccess(c, "friend request accepted", status)
}

func (h *FriendHandler) decline(c *fiber.Ctx) error {
	status, err := h.service.DeclineRequest(requestContext(c), sessionFromContext(c), c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, err, "decline friend request")
	}
	return utils.SendSuccess(c, "friend request declined", status)
}

func (h *FriendHandler) remove(c *fiber.Ctx) error {
	if err := h.service.RemoveFriend(requestContext(c), sessionFromContext(c), c.Params("userId")); err != nil {
		return respondError(c, h.logger, err, "remove friend")
	}
	return utils.SendSuccess(c, "friend removed", nil)
}
