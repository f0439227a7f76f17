package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardDays     = 7
)

// AdminAnalyticsService aggregates the numbers shown on the admin dashboard.
type AdminAnalyticsService interface {
	GetDashboard(ctx context.Context) (dto.AdminDashboardResponse, error)
	Invalidate(ctx context.Context)
}

type adminAnalyticsService struct {
	repo     repository.AdminAnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminAnalyticsService constructs the analytics service.
func NewAdminAnalyticsService(repo repository.AdminAnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminAnalyticsService) GetDashboard(ctx context.Context) (dto.AdminDashboardResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/admin_analytics")
	ctx, span := tracer.Start(ctx, "analytics.dashboard")
	span.SetAttributes(attribute.String("analytics.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.AdminDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(dashboardDays - 1))

	totalUsers, err := s.repo.CountUsers(ctx, nil)
	if err != nil {
		return s.fail(span, "count_users_failed", err)
	}
	newUsers, err := s.repo.CountUsers(ctx, &since)
	if err != nil {
		return s.fail(span, "count_new_users_failed", err)
	}
	activities, err := s.repo.CountActivities(ctx)
	if err != nil {
		return s.fail(span, "count_activities_failed", err)
	}
	posts, err := s.repo.CountPosts(ctx, false)
	if err != nil {
		return s.fail(span, "count_posts_failed", err)
	}
	reported, err := s.repo.CountPosts(ctx, true)
	if err != nil {
		return s.fail(span, "count_reported_failed", err)
	}
	signups, err := s.repo.ListSignupTimes(ctx, since)
	if err != nil {
		return s.fail(span, "list_signups_failed", err)
	}

	summary := dto.AdminDashboardResponse{
		TotalUsers:      totalUsers,
		NewUsers:        newUsers,
		TotalActivities: activities,
		TotalPosts:      posts,
		ReportedPosts:   reported,
		DailySignups:    bucketSignups(since, signups),
		GeneratedAt:     now,
	}
	span.SetAttributes(
		attribute.Int64("analytics.total_users", totalUsers),
		attribute.Int64("analytics.total_activities", activities),
	)

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// Invalidate drops the cached dashboard after an admin mutation.
func (s *adminAnalyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func (s *adminAnalyticsService) fail(span trace.Span, status string, err error) (dto.AdminDashboardResponse, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return dto.AdminDashboardResponse{}, err
}

// bucketSignups returns one point per day starting at since, zero-filled.
func bucketSignups(since time.Time, signups []time.Time) []dto.DailySignupPoint {
	counts := make(map[string]int64, dashboardDays)
	for _, createdAt := range signups {
		counts[createdAt.UTC().Format("2006-01-02")]++
	}

	points := make([]dto.DailySignupPoint, 0, dashboardDays)
	for i := 0; i < dashboardDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, dto.DailySignupPoint{Date: day, Count: counts[day]})
	}
	return points
}
