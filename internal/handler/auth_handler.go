package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// AuthHandler exposes registration, login and password reset.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/password/forgot", h.forgotPassword)
	router.Post("/password/reset", h.resetPassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	resp, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "register")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", resp)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	resp, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "login")
	}
	return utils.SendSuccess(c, "logged in", resp)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.PasswordResetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.RequestPasswordReset(requestContext(c), payload); err != nil {
		return respondError(c, h.logger, err, "password reset request")
	}
	// Same answer whether or not the address is registered.
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "if the address is registered a code has been sent", nil)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ResetPassword(requestContext(c), payload); err != nil {
		return respondError(c, h.logger, err, "password reset")
	}
	return utils.SendSuccess(c, "password updated", nil)
}
