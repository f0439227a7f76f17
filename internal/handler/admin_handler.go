package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// AdminHandler exposes user management, post moderation and feedback reports.
type AdminHandler struct {
	admin   service.AdminService
	reports service.ReportService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admin service.AdminService, reports service.ReportService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		reports: reports,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches admin routes; the router group is expected to be admin-only.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Post("/users/:id/role", h.toggleRole)
	router.Post("/users/:id/ban", h.setBanned)
	router.Delete("/users/:id", h.deleteUser)

	router.Get("/posts/reported", h.reportedPosts)
	router.Post("/posts/:id/resolve", h.resolveReport)
	router.Delete("/posts/:id", h.deletePost)

	router.Get("/reports", h.listReports)
	router.Delete("/reports/:id", h.deleteReport)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.AdminUserListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Role:     strings.TrimSpace(c.Query("role")),
	}
	users, err := h.admin.ListUsers(requestContext(c), sessionFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list users")
	}
	return utils.SendSuccess(c, "users", users)
}

func (h *AdminHandler) toggleRole(c *fiber.Ctx) error {
	user, err := h.admin.ToggleRole(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "toggle role")
	}
	return utils.SendSuccess(c, "role updated", user)
}

func (h *AdminHandler) setBanned(c *fiber.Ctx) error {
	var payload dto.AdminBanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.admin.SetBanned(requestContext(c), sessionFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "ban user")
	}
	return utils.SendSuccess(c, "ban status updated", user)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	if err := h.admin.DeleteUser(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete user")
	}
	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *AdminHandler) reportedPosts(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	posts, err := h.admin.ListReportedPosts(requestContext(c), sessionFromContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "list reported posts")
	}
	return utils.SendSuccess(c, "reported posts", posts)
}

func (h *AdminHandler) resolveReport(c *fiber.Ctx) error {
	if err := h.admin.ResolveReport(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "resolve report")
	}
	return utils.SendSuccess(c, "report resolved", nil)
}

func (h *AdminHandler) deletePost(c *fiber.Ctx) error {
	if err := h.admin.DeletePost(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete post")
	}
	return utils.SendSuccess(c, "post deleted", nil)
}

func (h *AdminHandler) listReports(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ReportListRequest{Kind: strings.TrimSpace(c.Query("kind")), Page: page, PageSize: pageSize}
	reports, err := h.reports.List(requestContext(c), sessionFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list reports")
	}
	return utils.SendSuccess(c, "reports", reports)
}

func (h *AdminHandler) deleteReport(c *fiber.Ctx) error {
	if err := h.reports.Delete(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "delete report")
	}
	return utils.SendSuccess(c, "report deleted", nil)
}
