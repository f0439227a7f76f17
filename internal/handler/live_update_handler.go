package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// LiveUpdateHandler serves the live updates posted to events.
type LiveUpdateHandler struct {
	service service.LiveUpdateService
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewLiveUpdateHandler constructs the handler.
func NewLiveUpdateHandler(service service.LiveUpdateService, uploads service.UploadService, logger zerolog.Logger) *LiveUpdateHandler {
	return &LiveUpdateHandler{
		service: service,
		uploads: uploads,
		logger:  logger.With().Str("component", "live_update_handler").Logger(),
	}
}

// Register binds live update routes under /events.
func (h *LiveUpdateHandler) Register(router fiber.Router) {
	router.Get("/:id/updates", h.list)
	router.Post("/:id/updates", h.post)
	router.Delete("/:id/updates/:updateId", h.delete)
}

func (h *LiveUpdateHandler) list(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	updates, err := h.service.List(requestContext(c), sessionFromContext(c), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "list live updates")
	}
	return utils.SendSuccess(c, "live updates", updates)
}

func (h *LiveUpdateHandler) post(c *fiber.Ctx) error {
	var payload dto.LiveUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session := sessionFromContext(c)
	ctx := requestContext(c)

	// A multipart request may carry the photo itself; it goes through the regular upload checks.
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		if file, err := c.FormFile("image"); err == nil {
			stored, err := h.uploads.Upload(ctx, file, session.UserID)
			if err != nil {
				return respondError(c, h.logger, err, "live update image upload")
			}
			payload.ImageURL = stored.URL
		}
	}

	update, err := h.service.Post(ctx, session, c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "post live update")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "live update posted", update)
}

func (h *LiveUpdateHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), sessionFromContext(c), c.Params("id"), c.Params("updateId")); err != nil {
		return respondError(c, h.logger, err, "delete live update")
	}
	return utils.SendSuccess(c, "live update deleted", nil)
}
