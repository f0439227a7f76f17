package models

import "time"

// ParticipationStatus is the state of a user's participation in an event.
type ParticipationStatus string

// Participation states. StatusNone is never stored; it describes the absence of a record.
const (
	StatusNone     ParticipationStatus = "none"
	StatusPending  ParticipationStatus = "pending"
	StatusAccepted ParticipationStatus = "accepted"
	StatusRejected ParticipationStatus = "rejected"
	StatusRemoved  ParticipationStatus = "removed"
)

// Effective folds a removed record into none: a removed user may request again.
func (s ParticipationStatus) Effective() ParticipationStatus {
	if s == "" || s == StatusRemoved {
		return StatusNone
	}
	return s
}

// UpcomingEvent tracks one user's participation in one event. The hike fields are
// copies of the event post, kept in sync when the owner edits the event.
type UpcomingEvent struct {
	ID           string              `gorm:"primaryKey;size:36" json:"id"`
	EventID      string              `gorm:"size:36;not null;uniqueIndex:idx_upcoming_event_user" json:"event_id"`
	UserID       string              `gorm:"size:36;not null;uniqueIndex:idx_upcoming_event_user;index" json:"user_id"`
	UserName     string              `gorm:"size:120" json:"user_name"`
	UserPhotoURL string              `gorm:"size:512" json:"user_photo_url"`
	OwnerID      string              `gorm:"size:36;not null" json:"owner_id"`
	Status       ParticipationStatus `gorm:"size:16;not null;index" json:"status"`
	Title        string              `gorm:"size:255" json:"title"`
	Location     string              `gorm:"size:255" json:"location"`
	Distance     string              `gorm:"size:32" json:"distance"`
	MeetingPoint string              `gorm:"size:255" json:"meeting_point"`
	ImageURL     string              `gorm:"size:512" json:"image_url"`
	EventDate    *time.Time          `json:"event_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
