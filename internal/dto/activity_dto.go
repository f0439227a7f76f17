package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/badges"
	"github.com/noah-isme/hikelink-api/internal/models"
)

// TrackingSampleRequest is one location reading pushed by the device.
type TrackingSampleRequest struct {
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Speed     float64    `json:"speed"`
	Timestamp *time.Time `json:"timestamp"`
}

// TrackingStopRequest ends a hike and names its trail.
type TrackingStopRequest struct {
	TrailName string `json:"trail_name" validate:"required,min=1,max=255"`
}

// ActivityResponse is a saved hike.
type ActivityResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TrailName  string    `json:"trail_name"`
	DistanceKm float64   `json:"distance_km"`
	Distance   string    `json:"distance"`
	Elapsed    string    `json:"elapsed"`
	Date       string    `json:"date"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewActivityResponse converts an activity model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:         model.ID,
		UserID:     model.UserID,
		TrailName:  model.TrailName,
		DistanceKm: model.DistanceKm,
		Distance:   model.Distance,
		Elapsed:    model.Elapsed,
		Date:       model.Date,
		ImageURL:   model.ImageURL,
		CreatedAt:  model.CreatedAt,
	}
}

// NewActivityResponseSlice converts activities into DTOs.
func NewActivityResponseSlice(items []models.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewActivityResponse(item))
	}
	return out
}

// ActivityStats aggregates a user's hikes.
type ActivityStats struct {
	Hikes      int64 `json:"hikes"`
	DistanceKm int64 `json:"distance_km"`
}

// BadgeProgressResponse lists the badge catalogue with the caller's progress.
type BadgeProgressResponse struct {
	Level   string         `json:"level"`
	Earned  []string       `json:"earned"`
	Newly   []string       `json:"newly_earned,omitempty"`
	Stats   ActivityStats  `json:"stats"`
	Catalog []badges.Badge `json:"catalog"`
	Levels  []badges.Level `json:"levels"`
}
