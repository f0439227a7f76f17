package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// AdminAnalyticsRepository supplies data for the administrator dashboard.
type AdminAnalyticsRepository interface {
	CountUsers(ctx context.Context, since *time.Time) (int64, error)
	CountActivities(ctx context.Context) (int64, error)
	CountPosts(ctx context.Context, reportedOnly bool) (int64, error)
	ListSignupTimes(ctx context.Context, since time.Time) ([]time.Time, error)
}

type adminAnalyticsRepository struct {
	db *gorm.DB
}

// NewAdminAnalyticsRepository constructs the analytics repository.
func NewAdminAnalyticsRepository(db *gorm.DB) AdminAnalyticsRepository {
	return &adminAnalyticsRepository{db: db}
}

func (r *adminAnalyticsRepository) CountUsers(ctx context.Context, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *adminAnalyticsRepository) CountActivities(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).Count(&count).Error
	return count, err
}

func (r *adminAnalyticsRepository) CountPosts(ctx context.Context, reportedOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})
	if reportedOnly {
		query = query.Where("reported = ?", true)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// ListSignupTimes returns registration timestamps; bucketing happens in the service so the
// query stays portable between PostgreSQL and SQLite.
func (r *adminAnalyticsRepository) ListSignupTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(users))
	for _, user := range users {
		times = append(times, user.CreatedAt)
	}
	return times, nil
}
