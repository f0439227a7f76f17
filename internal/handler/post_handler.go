package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// PostHandler serves the feed, posts, events and their likes and comments.
type PostHandler struct {
	service service.PostService
	logger  zerolog.Logger
}

// NewPostHandler constructs the handler.
func NewPostHandler(service service.PostService, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		logger:  logger.With().Str("component", "post_handler").Logger(),
	}
}

// Register binds post routes under /posts.
func (h *PostHandler) Register(router fiber.Router) {
	router.Get("", h.feed)
	router.Post("", h.createPost)
	router.Post("/events", h.createEvent)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/like", h.like)
	router.Delete("/:id/like", h.unlike)
	router.Get("/:id/comments", h.comments)
	router.Post("/:id/comments", h.comment)
	router.Post("/:id/report", h.report)
}

func (h *PostHandler) feed(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	query := dto.FeedQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Kind:   strings.TrimSpace(c.Query("kind")),
		Limit:  limit,
		Offset: offset,
	}
	if query.From, err = parseDateQuery(c, "from"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from date")
	}
	if query.To, err = parseDateQuery(c, "to"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to date")
	}

	feed, err := h.service.Feed(requestContext(c), sessionFromContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "load feed")
	}
	return utils.SendSuccess(c, "feed", feed)
}

func (h *PostHandler) createPost(c *fiber.Ctx) error {
	var payload dto.PostCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	post, err := h.service.CreatePost(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", post)
}

func (h *PostHandler) createEvent(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.CreateEvent(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create event")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *PostHandler) get(c *fiber.Ctx) error {
	post, err := h.service.Get(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load post")
	}
	return utils.SendSuccess(c, "post", post)
}

func (h *PostHandler) update(c *fiber.Ctx) error {
	var payload dto.PostUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	post, err := h.service.Update(requestContext(c), sessionFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update post")
	}
	return utils.SendSuccess(c, "post updated", post)
}

func (h *PostHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete post")
	}
	return utils.SendSuccess(c, "post deleted", nil)
}

func (h *PostHandler) like(c *fiber.Ctx) error {
	resp, err := h.service.Like(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "like post")
	}
	return utils.SendSuccess(c, "post liked", resp)
}

func (h *PostHandler) unlike(c *fiber.Ctx) error {
	resp, err := h.service.Unlike(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "unlike post")
	}
	return utils.SendSuccess(c, "post unliked", resp)
}

func (h *PostHandler) comments(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	comments, err := h.service.ListComments(requestContext(c), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "list comments")
	}
	return utils.SendSuccess(c, "comments", comments)
}

func (h *PostHandler) comment(c *fiber.Ctx) error {
	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	comment, err := h.service.AddComment(requestContext(c), sessionFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "add comment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}

func (h *PostHandler) report(c *fiber.Ctx) error {
	var payload dto.ReportPostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Report(requestContext(c), sessionFromContext(c), c.Params("id"), payload); err != nil {
		return respondError(c, h.logger, err, "report post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "post reported", nil)
}

// parseDateQuery accepts RFC 3339 timestamps or plain dates.
func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
