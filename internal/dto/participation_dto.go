package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ParticipationStatusResponse reports a user's state for an event.
type ParticipationStatusResponse struct {
	EventID string                     `json:"event_id"`
	UserID  string                     `json:"user_id"`
	Status  models.ParticipationStatus `json:"status"`
	IsOwner bool                       `json:"is_owner"`
}

// UpcomingEventResponse is a participation record with its denormalised event fields.
type UpcomingEventResponse struct {
	ID           string                     `json:"id"`
	EventID      string                     `json:"event_id"`
	UserID       string                     `json:"user_id"`
	UserName     string                     `json:"user_name"`
	UserPhotoURL string                     `json:"user_photo_url,omitempty"`
	OwnerID      string                     `json:"owner_id"`
	Status       models.ParticipationStatus `json:"status"`
	Title        string                     `json:"title"`
	Location     string                     `json:"location"`
	Distance     string                     `json:"distance"`
	MeetingPoint string                     `json:"meeting_point"`
	ImageURL     string                     `json:"image_url,omitempty"`
	EventDate    *time.Time                 `json:"event_date,omitempty"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// NewUpcomingEventResponse converts a participation record into a DTO.
func NewUpcomingEventResponse(model models.UpcomingEvent) UpcomingEventResponse {
	return UpcomingEventResponse{
		ID:           model.ID,
		EventID:      model.EventID,
		UserID:       model.UserID,
		UserName:     model.UserName,
		UserPhotoURL: model.UserPhotoURL,
		OwnerID:      model.OwnerID,
		Status:       model.Status,
		Title:        model.Title,
		Location:     model.Location,
		Distance:     model.Distance,
		MeetingPoint: model.MeetingPoint,
		ImageURL:     model.ImageURL,
		EventDate:    model.EventDate,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewUpcomingEventResponseSlice converts participation records into DTOs.
func NewUpcomingEventResponseSlice(items []models.UpcomingEvent) []UpcomingEventResponse {
	out := make([]UpcomingEventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewUpcomingEventResponse(item))
	}
	return out
}

// LiveUpdateRequest posts a live update to an event. Multipart requests may attach
// the image as a file instead of passing image_url.
type LiveUpdateRequest struct {
	Message  string `json:"message" form:"message" validate:"required,max=1000"`
	Type     string `json:"type" form:"type" validate:"omitempty,oneof=info warning"`
	ImageURL string `json:"image_url" form:"image_url" validate:"omitempty,url,max=512"`
}

// LiveUpdateResponse is a live update as shown on the event.
type LiveUpdateResponse struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLiveUpdateResponse converts a live update into a DTO.
func NewLiveUpdateResponse(model models.LiveUpdate) LiveUpdateResponse {
	return LiveUpdateResponse{
		ID:         model.ID,
		EventID:    model.EventID,
		AuthorID:   model.AuthorID,
		AuthorName: model.AuthorName,
		Type:       model.Type,
		Message:    model.Message,
		ImageURL:   model.ImageURL,
		CreatedAt:  model.CreatedAt,
	}
}
