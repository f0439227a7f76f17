package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/internal/utils"
)

// AdminAnalyticsHandler exposes the dashboard and the audit trail for administrators.
type AdminAnalyticsHandler struct {
	analytics service.AdminAnalyticsService
	audit     service.AuditService
	logger    zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(analytics service.AdminAnalyticsService, audit service.AuditService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		analytics: analytics,
		audit:     audit,
		logger:    logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/audit-logs", h.auditLogs)
}

func (h *AdminAnalyticsHandler) dashboard(c *fiber.Ctx) error {
	summary, err := h.analytics.GetDashboard(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return utils.SendSuccess(c, "dashboard", summary)
}

func (h *AdminAnalyticsHandler) auditLogs(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.AuditLogListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    strings.TrimSpace(c.Query("actor_id")),
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
	}

	response, err := h.audit.List(requestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit logs")
	}

	return utils.SendSuccess(c, "audit logs", response)
}
