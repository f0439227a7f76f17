package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/middleware"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// ChatHandler wires event group chats including the websocket upgrade.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:chatId/messages", h.history)
	router.Post("/:chatId/messages", h.send)

	router.Get("/:chatId/ws", h.upgrade, websocket.New(h.handleConnection))
}

// upgrade checks membership before the websocket handshake so rejected clients get a plain HTTP status.
func (h *ChatHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	ctx := requestContext(c)
	if err := h.service.Authorize(ctx, sessionFromContext(c), c.Params("chatId")); err != nil {
		return respondError(c, h.logger, err, "authorize chat connection")
	}
	c.Locals("request_ctx", ctx)
	return c.Next()
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	name, _ := conn.Locals(middleware.LocalUserName).(string)
	correlation, _ := conn.Locals("correlation_id").(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	roomID := conn.Params("chatId")

	opts := service.ChatConnectionOptions{
		UserID:        userID,
		DisplayName:   name,
		RoomID:        roomID,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Str("user_id", userID).Str("room_id", roomID).Msg("chat websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Str("user_id", userID).Str("room_id", roomID).Msg("chat websocket disconnected")
}

func (h *ChatHandler) list(c *fiber.Ctx) error {
	chats, err := h.service.ListChats(requestContext(c), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list chats")
	}
	return utils.SendSuccess(c, "chats", chats)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	query := dto.ChatHistoryQuery{RoomID: c.Params("chatId")}

	if before := c.Query("before"); before != "" {
		parsed, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid before timestamp")
		}
		query.Before = &parsed
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	query.Limit = limit

	messages, err := h.service.History(requestContext(c), sessionFromContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "chat history")
	}

	return utils.SendSuccess(c, "chat history", messages)
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	var payload dto.ChatSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.service.Send(requestContext(c), sessionFromContext(c), c.Params("chatId"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "send chat message")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}
