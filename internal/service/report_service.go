package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

// ErrReportNotFound indicates the report does not exist.
var ErrReportNotFound = errors.New("report not found")

// ReportService accepts feedback and bug reports and lets admins review them.
type ReportService interface {
	Submit(ctx context.Context, session Session, req dto.ReportCreateRequest) (dto.ReportResponse, error)
	List(ctx context.Context, session Session, req dto.ReportListRequest) (dto.ReportListResponse, error)
	Delete(ctx context.Context, session Session, id string) error
}

type reportService struct {
	repo      repository.ReportRepository
	users     repository.UserRepository
	audit     AuditRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewReportService constructs the report service.
func NewReportService(repo repository.ReportRepository, users repository.UserRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		repo:      repo,
		users:     users,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) Submit(ctx context.Context, session Session, req dto.ReportCreateRequest) (dto.ReportResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.ReportResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ReportResponse{}, err
	}

	message := strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if message == "" {
		return dto.ReportResponse{}, ErrEmptyContent
	}

	report := models.Report{
		Kind:    req.Kind,
		UserID:  session.UserID,
		Subject: strings.TrimSpace(s.sanitizer.Sanitize(req.Subject)),
		Message: message,
		Rating:  req.Rating,
	}
	if user, err := s.users.FindByID(ctx, session.UserID); err == nil {
		report.UserEmail = user.Email
	}

	if err := s.repo.Create(ctx, &report); err != nil {
		s.logger.Error().Err(err).Str("kind", req.Kind).Msg("failed to store report")
		return dto.ReportResponse{}, fmt.Errorf("store report: %w", err)
	}
	s.logger.Info().Str("report_id", report.ID).Str("kind", report.Kind).Msg("report submitted")
	return dto.NewReportResponse(report), nil
}

func (s *reportService) List(ctx context.Context, session Session, req dto.ReportListRequest) (dto.ReportListResponse, error) {
	if !session.IsAdmin() {
		return dto.ReportListResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ReportListResponse{}, err
	}

	pageSize := clampPageSize(req.PageSize)
	reports, total, err := s.repo.List(ctx, req.Kind, req.Page, pageSize)
	if err != nil {
		return dto.ReportListResponse{}, err
	}
	return dto.ReportListResponse{
		Items:      dto.NewReportResponseSlice(reports),
		Pagination: paginate(req.Page, pageSize, total),
	}, nil
}

func (s *reportService) Delete(ctx context.Context, session Session, id string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: report id", ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	recordAudit(ctx, s.audit, s.logger, session, "delete", "report", id, nil)
	return nil
}
