package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered hiker.
type User struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	Email        string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string                      `gorm:"size:255;not null" json:"-"`
	DisplayName  string                      `gorm:"size:120;not null" json:"display_name"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	PhotoURL     string                      `gorm:"size:512" json:"photo_url"`
	Role         string                      `gorm:"size:16;not null;default:user" json:"role"`
	Banned       bool                        `gorm:"not null;default:false" json:"banned"`
	Level        string                      `gorm:"size:32" json:"level"`
	Badges       datatypes.JSONSlice[string] `gorm:"type:json" json:"badges"`
	CreatedAt    time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Friendship states.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship links two users. A pending row is a request from RequesterID to AddresseeID;
// an accepted row makes both users friends of each other.
type Friendship struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	RequesterID string    `gorm:"size:36;not null;index" json:"requester_id"`
	AddresseeID string    `gorm:"size:36;not null;index" json:"addressee_id"`
	Status      string    `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
