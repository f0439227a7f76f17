package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/middleware"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func sessionFromContext(c *fiber.Ctx) service.Session {
	session := service.Session{}
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok {
		session.UserID = strings.TrimSpace(id)
	}
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		session.Role = role
	}
	if name, ok := c.Locals(middleware.LocalUserName).(string); ok {
		session.DisplayName = name
	}
	return session
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

var errorStatuses = []struct {
	status int
	errs   []error
}{
	{fiber.StatusBadRequest, []error{
		service.ErrInvalidInput, service.ErrEmptyContent, service.ErrSelfFriendship,
		service.ErrOwnerCannotJoin, service.ErrOwnerCannotLeave, service.ErrNotAnEvent,
		service.ErrInvalidResetCode, service.ErrUploadTypeNotAllowed, service.ErrUploadMissing,
		service.ErrCannotModifySelf, service.ErrSelfReview,
	}},
	{fiber.StatusUnauthorized, []error{service.ErrUnauthenticated, service.ErrInvalidCredentials}},
	{fiber.StatusForbidden, []error{
		service.ErrForbidden, service.ErrNotPostOwner, service.ErrNotEventOwner,
		service.ErrChatNotMember, service.ErrAccountBanned, service.ErrNotEventMember,
		service.ErrSeedDisabled, service.ErrSeedUnauthorized,
	}},
	{fiber.StatusNotFound, []error{
		service.ErrPostNotFound, service.ErrEventNotFound, service.ErrUserNotFound,
		service.ErrFriendRequestNotFound, service.ErrNotFriends, service.ErrChatNotFound,
		service.ErrReportNotFound, service.ErrNotTracking, service.ErrLiveUpdateNotFound,
		gorm.ErrRecordNotFound,
	}},
	{fiber.StatusConflict, []error{
		service.ErrEmailTaken, service.ErrAlreadyFriends, service.ErrFriendRequestPending,
		service.ErrParticipationConflict, service.ErrAlreadyTracking,
	}},
	{fiber.StatusRequestEntityTooLarge, []error{service.ErrUploadTooLarge}},
	{fiber.StatusServiceUnavailable, []error{service.ErrAssistantUnavailable, service.ErrResetUnavailable}},
}

func statusForError(err error) int {
	if isValidationError(err) {
		return fiber.StatusBadRequest
	}
	for _, group := range errorStatuses {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return fiber.StatusInternalServerError
}

// respondError maps service errors onto HTTP statuses. Unexpected failures are
// logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		requestLogger(logger, c).Error().Err(err).Msg(action + " failed")
		return utils.SendError(c, status, "internal server error")
	}
	return utils.SendError(c, status, err.Error())
}

func pagination(c *fiber.Ctx) (int, int, error) {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return 0, 0, errors.New("invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return 0, 0, errors.New("invalid offset")
	}
	return limit, offset, nil
}

func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, errors.New("invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return 0, 0, errors.New("invalid pageSize")
	}
	return page, pageSize, nil
}
