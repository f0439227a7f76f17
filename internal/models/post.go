package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post kinds.
const (
	PostKindPost  = "post"
	PostKindEvent = "event"
)

// Post is a feed entry. Event posts carry the hike details and own a roster and a group chat.
type Post struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	OwnerID       string     `gorm:"size:36;not null;index" json:"owner_id"`
	OwnerName     string     `gorm:"size:120" json:"owner_name"`
	OwnerPhotoURL string     `gorm:"size:512" json:"owner_photo_url"`
	Kind          string     `gorm:"size:16;not null;default:post;index" json:"kind"`
	Content       string     `gorm:"type:text" json:"content"`
	ImageURL      string     `gorm:"size:512" json:"image_url"`
	Title         string     `gorm:"size:255" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	EventDate     *time.Time `gorm:"index" json:"event_date,omitempty"`
	Location      string     `gorm:"size:255" json:"location"`
	Distance      string     `gorm:"size:32" json:"distance"`
	MeetingPoint  string     `gorm:"size:255" json:"meeting_point"`
	LikesCount    int        `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int        `gorm:"not null;default:0" json:"comments_count"`
	Reported      bool       `gorm:"not null;default:false;index" json:"reported"`
	ReportReason  string     `gorm:"size:255" json:"report_reason,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Kind == "" {
		p.Kind = PostKindPost
	}
	return nil
}

// IsEvent reports whether the post describes a group hike.
func (p Post) IsEvent() bool {
	return p.Kind == PostKindEvent
}

// EventParticipant is one entry of an event roster.
type EventParticipant struct {
	EventID   string    `gorm:"primaryKey;size:36" json:"event_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the roster table name explicit.
func (EventParticipant) TableName() string {
	return "post_participants"
}

// PostLike records that a user liked a post.
type PostLike struct {
	PostID    string    `gorm:"primaryKey;size:36" json:"post_id"`
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment is a comment left on a post.
type PostComment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PostID     string    `gorm:"size:36;not null;index" json:"post_id"`
	AuthorID   string    `gorm:"size:36;not null" json:"author_id"`
	AuthorName string    `gorm:"size:120" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (c *PostComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
