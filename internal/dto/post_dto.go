package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// PostCreateRequest publishes a plain post.
type PostCreateRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=5000"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=512"`
}

// EventCreateRequest publishes a group hike.
type EventCreateRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=255"`
	Description  string    `json:"description" validate:"max=5000"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	Location     string    `json:"location" validate:"required,max=255"`
	Distance     string    `json:"distance" validate:"omitempty,max=32"`
	MeetingPoint string    `json:"meeting_point" validate:"omitempty,max=255"`
	ImageURL     string    `json:"image_url" validate:"omitempty,url,max=512"`
}

// PostUpdateRequest edits a post or event. Event fields are ignored on plain posts.
type PostUpdateRequest struct {
	Content      *string    `json:"content" validate:"omitempty,max=5000"`
	Title        *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	EventDate    *time.Time `json:"event_date"`
	Location     *string    `json:"location" validate:"omitempty,max=255"`
	Distance     *string    `json:"distance" validate:"omitempty,max=32"`
	MeetingPoint *string    `json:"meeting_point" validate:"omitempty,max=255"`
	ImageURL     *string    `json:"image_url" validate:"omitempty,url,max=512"`
}

// FeedQuery filters the feed.
type FeedQuery struct {
	Search string
	From   *time.Time
	To     *time.Time
	Kind   string `validate:"omitempty,oneof=post event"`
	Limit  int    `validate:"omitempty,min=1,max=100"`
	Offset int    `validate:"omitempty,min=0"`
}

// PostResponse is a feed entry.
type PostResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	OwnerID       string     `json:"owner_id"`
	OwnerName     string     `json:"owner_name"`
	OwnerPhotoURL string     `json:"owner_photo_url,omitempty"`
	Content       string     `json:"content,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	Location      string     `json:"location,omitempty"`
	Distance      string     `json:"distance,omitempty"`
	MeetingPoint  string     `json:"meeting_point,omitempty"`
	Participants  []string   `json:"participants,omitempty"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
	LikedByMe     bool       `json:"liked_by_me"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewPostResponse converts a post model into a DTO.
func NewPostResponse(post models.Post, participants []string, liked bool) PostResponse {
	return PostResponse{
		ID:            post.ID,
		Kind:          post.Kind,
		OwnerID:       post.OwnerID,
		OwnerName:     post.OwnerName,
		OwnerPhotoURL: post.OwnerPhotoURL,
		Content:       post.Content,
		ImageURL:      post.ImageURL,
		Title:         post.Title,
		Description:   post.Description,
		EventDate:     post.EventDate,
		Location:      post.Location,
		Distance:      post.Distance,
		MeetingPoint:  post.MeetingPoint,
		Participants:  participants,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		LikedByMe:     liked,
		CreatedAt:     post.CreatedAt,
	}
}

// CommentCreateRequest adds a comment to a post.
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CommentResponse is a comment on a post.
type CommentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCommentResponse converts a comment model into a DTO.
func NewCommentResponse(model models.PostComment) CommentResponse {
	return CommentResponse{
		ID:         model.ID,
		PostID:     model.PostID,
		AuthorID:   model.AuthorID,
		AuthorName: model.AuthorName,
		Content:    model.Content,
		CreatedAt:  model.CreatedAt,
	}
}

// NewCommentResponseSlice converts comments into DTOs.
func NewCommentResponseSlice(items []models.PostComment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewCommentResponse(item))
	}
	return out
}

// LikeResponse reports the like state of a post after a toggle.
type LikeResponse struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// ReportPostRequest flags a post for moderation.
type ReportPostRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

// FeedResponse is one page of the feed.
type FeedResponse struct {
	Items  []PostResponse `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ReportedPostListResponse lists posts awaiting moderation.
type ReportedPostListResponse struct {
	Items      []ReportedPostResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// ReportedPostResponse is a flagged post with the reason given.
type ReportedPostResponse struct {
	PostResponse
	ReportReason string `json:"report_reason"`
}
