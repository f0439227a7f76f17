package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ReviewSummary aggregates the reviews left on one profile.
type ReviewSummary struct {
	Count   int64
	Average float64
}

// ReviewRepository persists profile reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByTarget(ctx context.Context, userID string, limit, offset int) ([]models.Review, error)
	Summary(ctx context.Context, userID string) (ReviewSummary, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository constructs the review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ListByTarget(ctx context.Context, userID string, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Summary(ctx context.Context, userID string) (ReviewSummary, error) {
	var summary ReviewSummary
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("target_user_id = ?", userID).
		Scan(&summary).Error
	return summary, err
}
