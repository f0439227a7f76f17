package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Live update kinds.
const (
	LiveUpdateInfo    = "info"
	LiveUpdateWarning = "warning"
)

// LiveUpdate is a message a participant posts to an event while the hike is under way.
type LiveUpdate struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	EventID    string    `gorm:"size:36;not null;index" json:"event_id"`
	AuthorID   string    `gorm:"size:36;not null;index" json:"author_id"`
	AuthorName string    `gorm:"size:120" json:"author_name"`
	Type       string    `gorm:"size:16;not null;default:info" json:"type"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	ImageURL   string    `gorm:"size:512" json:"image_url"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (u *LiveUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Type == "" {
		u.Type = LiveUpdateInfo
	}
	return nil
}
