package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// UserSummary is the public view of a user.
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Role        string `json:"role,omitempty"`
}

// NewUserSummary converts a user model into its public view.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Role:        user.Role,
	}
}

// NewUserSummarySlice converts users into public views.
func NewUserSummarySlice(users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserSummary(user))
	}
	return out
}

// ProfileResponse is a user's profile page.
type ProfileResponse struct {
	UserSummary
	Bio           string        `json:"bio"`
	Level         string        `json:"level"`
	Badges        []string      `json:"badges"`
	Stats         ActivityStats `json:"stats"`
	Friends       int           `json:"friends"`
	ReviewCount   int64         `json:"review_count"`
	AverageRating float64       `json:"average_rating"`
	MemberSince   time.Time     `json:"member_since"`
}

// ProfileUpdateRequest updates the caller's profile.
type ProfileUpdateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=120"`
	Bio         *string `json:"bio" validate:"omitempty,max=1000"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,url,max=512"`
}

// ReviewRequest rates another hiker.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ReviewResponse is a review shown on a profile.
type ReviewResponse struct {
	ID           string    `json:"id"`
	TargetUserID string    `json:"target_user_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReviewResponse converts a review model into a DTO.
func NewReviewResponse(model models.Review) ReviewResponse {
	return ReviewResponse{
		ID:           model.ID,
		TargetUserID: model.TargetUserID,
		ReviewerID:   model.ReviewerID,
		ReviewerName: model.ReviewerName,
		Rating:       model.Rating,
		Comment:      model.Comment,
		CreatedAt:    model.CreatedAt,
	}
}
