package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ActivityTotals aggregates a user's saved hikes.
type ActivityTotals struct {
	Hikes      int64
	DistanceKm float64
}

// ActivityRepository persists tracked hikes.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	SetImage(ctx context.Context, id, imageURL string) error
	FindByID(ctx context.Context, id string) (models.Activity, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error)
	Totals(ctx context.Context, userID string) (ActivityTotals, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) SetImage(ctx context.Context, id, imageURL string) error {
	result := r.db.WithContext(ctx).Model(&models.Activity{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *activityRepository) FindByID(ctx context.Context, id string) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *activityRepository) Totals(ctx context.Context, userID string) (ActivityTotals, error) {
	var row struct {
		Hikes      int64
		DistanceKm float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("COUNT(*) AS hikes, COALESCE(SUM(distance_km), 0) AS distance_km").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return ActivityTotals{}, err
	}
	return ActivityTotals{Hikes: row.Hikes, DistanceKm: row.DistanceKm}, nil
}
