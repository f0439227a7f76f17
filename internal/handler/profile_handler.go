package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// ProfileHandler serves user profiles, reviews, avatar uploads and user search.
type ProfileHandler struct {
	profiles service.ProfileService
	posts    service.PostService
	uploads  service.UploadService
	logger   zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles service.ProfileService, posts service.PostService, uploads service.UploadService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		posts:    posts,
		uploads:  uploads,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds profile routes under /users.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.search)
	router.Get("/me", h.me)
	router.Patch("/me", h.update)
	router.Post("/me/photo", h.uploadPhoto)
	router.Get("/:id", h.get)
	router.Get("/:id/posts", h.listPosts)
	router.Get("/:id/reviews", h.listReviews)
	router.Post("/:id/reviews", h.addReview)
}

func (h *ProfileHandler) search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("search"))
	users, err := h.profiles.Search(requestContext(c), sessionFromContext(c), term)
	if err != nil {
		return respondError(c, h.logger, err, "user search")
	}
	return utils.SendSuccess(c, "users", users)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(requestContext(c), sessionFromContext(c), "")
	if err != nil {
		return respondError(c, h.logger, err, "load own profile")
	}
	return utils.SendSuccess(c, "profile", profile)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load profile")
	}
	return utils.SendSuccess(c, "profile", profile)
}

func (h *ProfileHandler) listPosts(c *fiber.Ctx) error {
	posts, err := h.posts.ListByOwner(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "list user posts")
	}
	return utils.SendSuccess(c, "posts", posts)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.Update(requestContext(c), sessionFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update profile")
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) uploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	session := sessionFromContext(c)
	ctx := requestContext(c)
	stored, err := h.uploads.Upload(ctx, file, session.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "avatar upload")
	}

	profile, err := h.profiles.SetPhoto(ctx, session, stored.URL)
	if err != nil {
		return respondError(c, h.logger, err, "set avatar")
	}
	return utils.SendSuccess(c, "photo updated", profile)
}

func (h *ProfileHandler) listReviews(c *fiber.Ctx) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reviews, err := h.profiles.ListReviews(requestContext(c), sessionFromContext(c), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "list reviews")
	}
	return utils.SendSuccess(c, "reviews", reviews)
}

func (h *ProfileHandler) addReview(c *fiber.Ctx) error {
	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	review, err := h.profiles.AddReview(requestContext(c), sessionFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "add review")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "review added", review)
}
