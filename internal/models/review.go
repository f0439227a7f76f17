package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a rating one hiker leaves on another hiker's profile.
type Review struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TargetUserID string    `gorm:"size:36;not null;index" json:"target_user_id"`
	ReviewerID   string    `gorm:"size:36;not null;index" json:"reviewer_id"`
	ReviewerName string    `gorm:"size:120" json:"reviewer_name"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
