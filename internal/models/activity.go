package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is a completed, tracked hike.
type Activity struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	TrailName  string    `gorm:"size:255" json:"trail_name"`
	DistanceKm float64   `gorm:"not null" json:"distance_km"`
	Distance   string    `gorm:"size:32;not null" json:"distance"`
	Elapsed    string    `gorm:"size:16;not null" json:"elapsed"`
	Seconds    int64     `gorm:"not null" json:"seconds"`
	Date       string    `gorm:"size:10;not null" json:"date"`
	ImageURL   string    `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AuditLog captures administrative actions.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"size:36;not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string            `gorm:"size:36" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
