package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// LiveUpdateRepository persists the live updates posted to events.
type LiveUpdateRepository interface {
	Create(ctx context.Context, update *models.LiveUpdate) error
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]models.LiveUpdate, error)
	FindByID(ctx context.Context, id string) (models.LiveUpdate, error)
	Delete(ctx context.Context, id string) error
}

type liveUpdateRepository struct {
	db *gorm.DB
}

// NewLiveUpdateRepository constructs the live update repository.
func NewLiveUpdateRepository(db *gorm.DB) LiveUpdateRepository {
	return &liveUpdateRepository{db: db}
}

func (r *liveUpdateRepository) Create(ctx context.Context, update *models.LiveUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

// ListByEvent returns the newest updates first.
func (r *liveUpdateRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]models.LiveUpdate, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var updates []models.LiveUpdate
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&updates).Error
	return updates, err
}

func (r *liveUpdateRepository) FindByID(ctx context.Context, id string) (models.LiveUpdate, error) {
	var update models.LiveUpdate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&update).Error; err != nil {
		return models.LiveUpdate{}, err
	}
	return update, nil
}

func (r *liveUpdateRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LiveUpdate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
