package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ErrFriendshipConflict indicates the friendship row was not in the expected state.
var ErrFriendshipConflict = errors.New("friendship state changed concurrently")

// FriendshipRepository persists friend requests and friendships. Every mutation writes
// the friendship row and its notifications in one transaction.
type FriendshipRepository interface {
	Find(ctx context.Context, a, b string) (models.Friendship, error)
	Request(ctx context.Context, requesterID, addresseeID string, notification models.Notification) (models.Friendship, error)
	Accept(ctx context.Context, requesterID, addresseeID string, notification models.Notification) (models.Friendship, error)
	Decline(ctx context.Context, requesterID, addresseeID string, notification models.Notification) error
	Cancel(ctx context.Context, requesterID, addresseeID string) error
	Remove(ctx context.Context, a, b string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
	ListIncoming(ctx context.Context, userID string) ([]models.Friendship, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.Friendship, error)
	CountFriends(ctx context.Context, userID string) (int64, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository constructs the friendship repository.
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Find(ctx context.Context, a, b string) (models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).Where("id = ?", models.FriendshipID(a, b)).First(&friendship).Error; err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

func (r *friendshipRepository) Request(ctx context.Context, requesterID, addresseeID string, notification models.Notification) (models.Friendship, error) {
	friendship := models.Friendship{
		ID:          models.FriendshipID(requesterID, addresseeID),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipPending,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&friendship)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFriendshipConflict
		}
		return upsertNotification(tx, &notification)
	})
	if err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

func (r *friendshipRepository) Accept(ctx context.Context, requesterID, addresseeID string, notification models.Notification) (models.Friendship, error) {
	id := models.FriendshipID(requesterID, addresseeID)
	var friendship models.Friendship

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Friendship{}).
			Where("id = ? AND requester_id = ? AND status = ?", id, requesterID, models.FriendshipPending).
			Updates(map[string]interface{}{"status": models.FriendshipAccepted, "updated_at": time.Now().UTC()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFriendshipConflict
		}

		if err := dismissFriendRequest(tx, requesterID, addresseeID); err != nil {
			return err
		}
		if err := upsertNotification(tx, &notification); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&friendship).Error
	})
	if err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

func (r *friendshipRepository) Decline(ctx context.Context, requesterID, addresseeID string, notification models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePendingRequest(tx, requesterID, addresseeID); err != nil {
			return err
		}
		if err := dismissFriendRequest(tx, requesterID, addresseeID); err != nil {
			return err
		}
		return upsertNotification(tx, &notification)
	})
}

func (r *friendshipRepository) Cancel(ctx context.Context, requesterID, addresseeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePendingRequest(tx, requesterID, addresseeID); err != nil {
			return err
		}
		return dismissFriendRequest(tx, requesterID, addresseeID)
	})
}

func (r *friendshipRepository) Remove(ctx context.Context, a, b string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", models.FriendshipID(a, b), models.FriendshipAccepted).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFriendshipConflict
	}
	return nil
}

func (r *friendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", models.FriendshipAccepted, userID, userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.RequesterID == userID {
			ids = append(ids, row.AddresseeID)
		} else {
			ids = append(ids, row.RequesterID)
		}
	}
	return ids, nil
}

func (r *friendshipRepository) ListIncoming(ctx context.Context, userID string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *friendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *friendshipRepository) CountFriends(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", models.FriendshipAccepted, userID, userID).
		Count(&count).Error
	return count, err
}

func deletePendingRequest(tx *gorm.DB, requesterID, addresseeID string) error {
	result := tx.Where("id = ? AND requester_id = ? AND status = ?",
		models.FriendshipID(requesterID, addresseeID), requesterID, models.FriendshipPending).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFriendshipConflict
	}
	return nil
}

func dismissFriendRequest(tx *gorm.DB, requesterID, addresseeID string) error {
	return tx.Where("id = ?", models.FriendRequestNotificationID(requesterID, addresseeID)).
		Delete(&models.Notification{}).Error
}
