package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ChatRepository persists group chats, their members and message history.
type ChatRepository interface {
	Save(ctx context.Context, message *models.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string, before time.Time, limit int) ([]models.ChatMessage, error)
	LatestByRoom(ctx context.Context, roomID string) (models.ChatMessage, error)
	FindChat(ctx context.Context, chatID string) (models.GroupChat, error)
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
	Members(ctx context.Context, chatID string) ([]string, error)
	ListChatsForUser(ctx context.Context, userID string) ([]models.GroupChat, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a chat repository backed by GORM.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Save(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) ListByRoom(ctx context.Context, roomID string, before time.Time, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.ChatMessage
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	// Clients render oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *chatRepository) LatestByRoom(ctx context.Context, roomID string) (models.ChatMessage, error) {
	var message models.ChatMessage
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at DESC").Order("id DESC").First(&message).Error
	if err != nil {
		return models.ChatMessage{}, err
	}
	return message, nil
}

func (r *chatRepository) FindChat(ctx context.Context, chatID string) (models.GroupChat, error) {
	var chat models.GroupChat
	if err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error; err != nil {
		return models.GroupChat{}, err
	}
	return chat, nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *chatRepository) Members(ctx context.Context, chatID string) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupChatMember{}).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func (r *chatRepository) ListChatsForUser(ctx context.Context, userID string) ([]models.GroupChat, error) {
	var chats []models.GroupChat
	err := r.db.WithContext(ctx).
		Joins("JOIN group_chat_members ON group_chat_members.chat_id = group_chats.id").
		Where("group_chat_members.user_id = ?", userID).
		Order("group_chats.updated_at DESC").
		Find(&chats).Error
	return chats, err
}
