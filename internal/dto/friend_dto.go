package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// Friendship states as seen from one user's side.
const (
	FriendStatusNone            = "none"
	FriendStatusFriends         = "friends"
	FriendStatusPendingSent     = "pending_sent"
	FriendStatusPendingReceived = "pending_received"
)

// FriendRequestResponse describes a pending friend request.
type FriendRequestResponse struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	AddresseeID string    `json:"addressee_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFriendRequestResponse converts a friendship row into a DTO.
func NewFriendRequestResponse(model models.Friendship) FriendRequestResponse {
	return FriendRequestResponse{
		ID:          model.ID,
		RequesterID: model.RequesterID,
		AddresseeID: model.AddresseeID,
		CreatedAt:   model.CreatedAt,
	}
}

// NewFriendRequestResponseSlice converts friendship rows into DTOs.
func NewFriendRequestResponseSlice(items []models.Friendship) []FriendRequestResponse {
	out := make([]FriendRequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewFriendRequestResponse(item))
	}
	return out
}

// FriendStatusResponse reports the relationship between the caller and another user.
type FriendStatusResponse struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}
