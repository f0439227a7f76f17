package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationEventJoinRequest      = "event_join_request"
	NotificationEventJoinAccepted     = "event_join_accepted"
	NotificationEventJoinRejected     = "event_join_rejected"
	NotificationEventRemoved          = "event_removed"
	NotificationFriendRequest         = "friend_request"
	NotificationFriendRequestAccepted = "friend_request_accepted"
	NotificationFriendRequestRejected = "friend_request_rejected"
	NotificationPostLiked             = "post_liked"
	NotificationPostCommented         = "post_commented"
)

// Notification is addressed to ReceiverID and describes something SenderID did.
type Notification struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	SenderID   string    `gorm:"size:36;index" json:"sender_id"`
	SenderName string    `gorm:"size:120" json:"sender_name"`
	ReceiverID string    `gorm:"size:36;not null;index" json:"receiver_id"`
	EventID    *string   `gorm:"size:36;index" json:"event_id,omitempty"`
	EventTitle string    `gorm:"size:255" json:"event_title,omitempty"`
	Message    string    `gorm:"type:text" json:"message"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// GroupChat is the conversation attached to an event.
type GroupChat struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	EventID   string    `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	Title     string    `gorm:"size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupChatMember grants a user access to a group chat.
type GroupChatMember struct {
	ChatID    string    `gorm:"primaryKey;size:36" json:"chat_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is a single message posted into a group chat.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"size:36;index" json:"room_id"`
	SenderID   string    `gorm:"size:36;index" json:"sender_id"`
	SenderName string    `gorm:"size:120" json:"sender_name"`
	Content    string    `gorm:"type:text" json:"content"`
	Type       string    `gorm:"size:32;default:text" json:"type"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
