package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/badges"
	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

// ActivityService lists saved hikes and keeps badges and levels current.
type ActivityService interface {
	List(ctx context.Context, session Session, limit, offset int) ([]dto.ActivityResponse, error)
	Stats(ctx context.Context, userID string) (dto.ActivityStats, error)
	Badges(ctx context.Context, session Session) (dto.BadgeProgressResponse, error)
	EvaluateBadges(ctx context.Context, userID string) (dto.BadgeProgressResponse, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	users  repository.UserRepository
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, users repository.UserRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("component", "activity_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/activity"),
	}
}

func (s *activityService) List(ctx context.Context, session Session, limit, offset int) ([]dto.ActivityResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByUser(ctx, session.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponseSlice(items), nil
}

func (s *activityService) Stats(ctx context.Context, userID string) (dto.ActivityStats, error) {
	totals, err := s.repo.Totals(ctx, userID)
	if err != nil {
		return dto.ActivityStats{}, err
	}
	return toActivityStats(totals), nil
}

func (s *activityService) Badges(ctx context.Context, session Session) (dto.BadgeProgressResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.BadgeProgressResponse{}, err
	}
	return s.EvaluateBadges(ctx, session.UserID)
}

// EvaluateBadges recomputes the user's badges from their totals and stores any change.
func (s *activityService) EvaluateBadges(ctx context.Context, userID string) (dto.BadgeProgressResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activities.evaluate_badges")
	defer span.End()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BadgeProgressResponse{}, ErrUserNotFound
		}
		return dto.BadgeProgressResponse{}, fmt.Errorf("load user: %w", err)
	}

	totals, err := s.repo.Totals(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return dto.BadgeProgressResponse{}, fmt.Errorf("load totals: %w", err)
	}

	// Badges and levels only ever go up, even if activities are deleted later.
	earned := badges.Merge(user.Badges, badges.Earned(badges.Totals{Hikes: totals.Hikes, DistanceKm: totals.DistanceKm}))
	level := badges.HigherLevel(user.Level, badges.CurrentLevel(earned))
	newly := badges.NewlyEarned(user.Badges, earned)

	if len(newly) > 0 || level != user.Level {
		updates := map[string]interface{}{"badges": datatypes.JSONSlice[string](earned), "level": level}
		if _, err := s.users.Update(ctx, userID, updates); err != nil {
			span.RecordError(err)
			return dto.BadgeProgressResponse{}, fmt.Errorf("store badges: %w", err)
		}
		s.logger.Info().Str("user_id", userID).Strs("badges", newly).Str("level", level).Msg("badges updated")
	}

	return dto.BadgeProgressResponse{
		Level:   level,
		Earned:  earned,
		Newly:   newly,
		Stats:   toActivityStats(totals),
		Catalog: badges.Catalogue,
		Levels:  badges.Levels,
	}, nil
}

func toActivityStats(totals repository.ActivityTotals) dto.ActivityStats {
	return dto.ActivityStats{Hikes: totals.Hikes, DistanceKm: int64(math.Round(totals.DistanceKm))}
}
