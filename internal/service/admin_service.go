package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

// ErrCannotModifySelf is returned when an admin targets their own account.
var ErrCannotModifySelf = errors.New("admins cannot change their own account here")

// AdminService covers user management and content moderation.
type AdminService interface {
	ListUsers(ctx context.Context, session Session, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	ToggleRole(ctx context.Context, session Session, userID string) (dto.AdminUserResponse, error)
	SetBanned(ctx context.Context, session Session, userID string, req dto.AdminBanRequest) (dto.AdminUserResponse, error)
	DeleteUser(ctx context.Context, session Session, userID string) error
	ListReportedPosts(ctx context.Context, session Session, page, pageSize int) (dto.ReportedPostListResponse, error)
	ResolveReport(ctx context.Context, session Session, postID string) error
	DeletePost(ctx context.Context, session Session, postID string) error
}

type adminService struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	audit     AuditRecorder
	analytics AdminAnalyticsService
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAdminService constructs the admin service. Analytics may be nil.
func NewAdminService(users repository.UserRepository, posts repository.PostRepository, audit AuditRecorder, analytics AdminAnalyticsService, logger zerolog.Logger) AdminService {
	return &adminService{
		users:     users,
		posts:     posts,
		audit:     audit,
		analytics: analytics,
		logger:    logger.With().Str("component", "admin_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/admin"),
	}
}

func (s *adminService) ListUsers(ctx context.Context, session Session, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if !session.IsAdmin() {
		return dto.AdminUserListResponse{}, ErrForbidden
	}

	pageSize := clampPageSize(req.PageSize)
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Page:     req.Page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	items := make([]dto.AdminUserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewAdminUserResponse(user))
	}
	return dto.AdminUserListResponse{Items: items, Pagination: paginate(req.Page, pageSize, total)}, nil
}

func (s *adminService) ToggleRole(ctx context.Context, session Session, userID string) (dto.AdminUserResponse, error) {
	target, err := s.loadTarget(ctx, session, userID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	role := models.RoleAdmin
	if target.IsAdmin() {
		role = models.RoleUser
	}

	updated, err := s.users.Update(ctx, target.ID, map[string]interface{}{"role": role})
	if err != nil {
		return dto.AdminUserResponse{}, fmt.Errorf("update role: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, session, "toggle_role", "user", target.ID, map[string]interface{}{"from": target.Role, "to": role})
	return dto.NewAdminUserResponse(updated), nil
}

func (s *adminService) SetBanned(ctx context.Context, session Session, userID string, req dto.AdminBanRequest) (dto.AdminUserResponse, error) {
	target, err := s.loadTarget(ctx, session, userID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	updated, err := s.users.Update(ctx, target.ID, map[string]interface{}{"banned": req.Banned})
	if err != nil {
		return dto.AdminUserResponse{}, fmt.Errorf("update ban: %w", err)
	}

	action := "unban"
	if req.Banned {
		action = "ban"
	}
	recordAudit(ctx, s.audit, s.logger, session, action, "user", target.ID, map[string]interface{}{"email": target.Email})
	return dto.NewAdminUserResponse(updated), nil
}

func (s *adminService) DeleteUser(ctx context.Context, session Session, userID string) error {
	target, err := s.loadTarget(ctx, session, userID)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "admin.delete_user", trace.WithAttributes(attribute.String("admin.target_id", target.ID)))
	defer span.End()

	if err := s.users.Delete(ctx, target.ID); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	recordAudit(ctx, s.audit, s.logger, session, "delete", "user", target.ID, map[string]interface{}{"email": target.Email})
	s.invalidate(ctx)
	return nil
}

func (s *adminService) ListReportedPosts(ctx context.Context, session Session, page, pageSize int) (dto.ReportedPostListResponse, error) {
	if !session.IsAdmin() {
		return dto.ReportedPostListResponse{}, ErrForbidden
	}

	pageSize = clampPageSize(pageSize)
	posts, total, err := s.posts.ListReported(ctx, page, pageSize)
	if err != nil {
		return dto.ReportedPostListResponse{}, err
	}

	items := make([]dto.ReportedPostResponse, 0, len(posts))
	for _, post := range posts {
		items = append(items, dto.ReportedPostResponse{
			PostResponse: dto.NewPostResponse(post, nil, false),
			ReportReason: post.ReportReason,
		})
	}
	return dto.ReportedPostListResponse{Items: items, Pagination: paginate(page, pageSize, total)}, nil
}

func (s *adminService) ResolveReport(ctx context.Context, session Session, postID string) error {
	if err := s.checkPost(session, postID); err != nil {
		return err
	}
	if err := s.posts.ClearFlag(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	recordAudit(ctx, s.audit, s.logger, session, "resolve_report", "post", postID, nil)
	s.invalidate(ctx)
	return nil
}

func (s *adminService) DeletePost(ctx context.Context, session Session, postID string) error {
	if err := s.checkPost(session, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	recordAudit(ctx, s.audit, s.logger, session, "delete", "post", postID, nil)
	s.invalidate(ctx)
	return nil
}

func (s *adminService) checkPost(session Session, postID string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if _, err := uuid.Parse(postID); err != nil {
		return fmt.Errorf("%w: post id", ErrInvalidInput)
	}
	return nil
}

func (s *adminService) loadTarget(ctx context.Context, session Session, userID string) (models.User, error) {
	if !session.IsAdmin() {
		return models.User{}, ErrForbidden
	}
	if _, err := uuid.Parse(userID); err != nil {
		return models.User{}, fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	if userID == session.UserID {
		return models.User{}, ErrCannotModifySelf
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *adminService) invalidate(ctx context.Context) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx)
	}
}
