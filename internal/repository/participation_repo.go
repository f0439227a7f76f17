package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ErrParticipationConflict indicates the participation record was not in a state the
// transition accepts when the transaction ran.
var ErrParticipationConflict = errors.New("participation state changed concurrently")

// MembershipOp describes what a transition does to a roster or chat membership.
type MembershipOp int

// Membership operations.
const (
	MembershipKeep MembershipOp = iota
	MembershipAdd
	MembershipRemove
)

// ParticipationChange is every write of one workflow transition. Apply commits it atomically.
type ParticipationChange struct {
	EventID   string
	UserID    string
	ChatTitle string
	// From lists the effective states the transition may start from.
	From []models.ParticipationStatus
	// Upsert writes the full record, creating it when absent.
	Upsert *models.UpcomingEvent
	// SetStatus updates the status of the existing record.
	SetStatus models.ParticipationStatus
	// Delete removes the record.
	Delete  bool
	Roster  MembershipOp
	Chat    MembershipOp
	Notify  []models.Notification
	Dismiss []string
}

// ParticipationRepository persists the event participation workflow.
type ParticipationRepository interface {
	Find(ctx context.Context, eventID, userID string) (models.UpcomingEvent, error)
	Apply(ctx context.Context, change ParticipationChange) (models.ParticipationStatus, error)
	ListByUser(ctx context.Context, userID string, statuses []models.ParticipationStatus) ([]models.UpcomingEvent, error)
	ListByEvent(ctx context.Context, eventID string, statuses []models.ParticipationStatus) ([]models.UpcomingEvent, error)
	Roster(ctx context.Context, eventID string) ([]string, error)
}

type participationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository constructs a repository backed by GORM.
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) Find(ctx context.Context, eventID, userID string) (models.UpcomingEvent, error) {
	var record models.UpcomingEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", models.UpcomingEventID(eventID, userID)).
		First(&record).Error
	if err != nil {
		return models.UpcomingEvent{}, err
	}
	return record, nil
}

func (r *participationRepository) Apply(ctx context.Context, change ParticipationChange) (models.ParticipationStatus, error) {
	recordID := models.UpcomingEventID(change.EventID, change.UserID)
	previous := models.StatusNone

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.UpcomingEvent
		err := tx.Where("id = ?", recordID).First(&current).Error
		switch {
		case err == nil:
			previous = current.Status.Effective()
		case errors.Is(err, gorm.ErrRecordNotFound):
			previous = models.StatusNone
		default:
			return err
		}

		if !containsStatus(change.From, previous) {
			return ErrParticipationConflict
		}

		guard := storedStatuses(change.From)

		switch {
		case change.Upsert != nil:
			record := *change.Upsert
			record.ID = recordID
			record.EventID = change.EventID
			record.UserID = change.UserID
			result := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "user_name", "user_photo_url", "owner_id", "title", "location",
					"distance", "meeting_point", "image_url", "event_date", "updated_at",
				}),
				Where: clause.Where{Exprs: []clause.Expression{
					clause.IN{Column: clause.Column{Table: "upcoming_events", Name: "status"}, Values: guard},
				}},
			}).Create(&record)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrParticipationConflict
			}
		case change.SetStatus != "":
			result := tx.Model(&models.UpcomingEvent{}).
				Where("id = ? AND status IN ?", recordID, guard).
				Updates(map[string]interface{}{"status": change.SetStatus, "updated_at": time.Now().UTC()})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrParticipationConflict
			}
		case change.Delete:
			result := tx.Where("id = ? AND status IN ?", recordID, guard).Delete(&models.UpcomingEvent{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrParticipationConflict
			}
		}

		if err := applyRoster(tx, change.EventID, change.UserID, change.Roster); err != nil {
			return err
		}
		if err := applyChat(tx, change.EventID, change.UserID, change.ChatTitle, change.Chat); err != nil {
			return err
		}

		if len(change.Dismiss) > 0 {
			if err := tx.Where("id IN ?", change.Dismiss).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
		}

		for i := range change.Notify {
			if err := upsertNotification(tx, &change.Notify[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return previous, err
	}

	return previous, nil
}

func (r *participationRepository) ListByUser(ctx context.Context, userID string, statuses []models.ParticipationStatus) ([]models.UpcomingEvent, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var records []models.UpcomingEvent
	if err := query.Order("event_date ASC").Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *participationRepository) ListByEvent(ctx context.Context, eventID string, statuses []models.ParticipationStatus) ([]models.UpcomingEvent, error) {
	query := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var records []models.UpcomingEvent
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *participationRepository) Roster(ctx context.Context, eventID string) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func applyRoster(tx *gorm.DB, eventID, userID string, op MembershipOp) error {
	switch op {
	case MembershipAdd:
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventParticipant{EventID: eventID, UserID: userID}).Error
	case MembershipRemove:
		return tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventParticipant{}).Error
	default:
		return nil
	}
}

func applyChat(tx *gorm.DB, eventID, userID, title string, op MembershipOp) error {
	chatID := models.GroupChatID(eventID)
	switch op {
	case MembershipAdd:
		chat := models.GroupChat{ID: chatID, EventID: eventID, Title: title}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&chat).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.GroupChatMember{ChatID: chatID, UserID: userID}).Error
	case MembershipRemove:
		return tx.Where("chat_id = ? AND user_id = ?", chatID, userID).
			Delete(&models.GroupChatMember{}).Error
	default:
		return nil
	}
}

func upsertNotification(tx *gorm.DB, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"type", "sender_id", "sender_name", "receiver_id", "event_id", "event_title",
			"message", "read", "created_at", "updated_at",
		}),
	}).Create(notification).Error
}

func containsStatus(set []models.ParticipationStatus, status models.ParticipationStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

// storedStatuses maps effective states to the values that can be found in the table.
func storedStatuses(from []models.ParticipationStatus) []interface{} {
	values := make([]interface{}, 0, len(from)+1)
	for _, status := range from {
		if status == models.StatusNone {
			values = append(values, string(models.StatusRemoved))
			continue
		}
		values = append(values, string(status))
	}
	return values
}
