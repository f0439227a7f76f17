package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminUserListRequest defines filters for listing users.
type AdminUserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

// AdminUserResponse serializes user data for admin endpoints.
type AdminUserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Banned      bool      `json:"banned"`
	Level       string    `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminUserListResponse wraps a paginated user response.
type AdminUserListResponse struct {
	Items      []AdminUserResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// AdminBanRequest toggles the banned flag of a user.
type AdminBanRequest struct {
	Banned bool `json:"banned"`
}

// NewAdminUserResponse converts a user model into a DTO.
func NewAdminUserResponse(user models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Banned:      user.Banned,
		Level:       user.Level,
		CreatedAt:   user.CreatedAt,
	}
}

// DailySignupPoint counts signups on a given day.
type DailySignupPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AdminDashboardResponse aggregates dashboard metrics.
type AdminDashboardResponse struct {
	TotalUsers      int64              `json:"total_users"`
	NewUsers        int64              `json:"new_users"`
	TotalActivities int64              `json:"total_activities"`
	TotalPosts      int64              `json:"total_posts"`
	ReportedPosts   int64              `json:"reported_posts"`
	DailySignups    []DailySignupPoint `json:"daily_signups"`
	GeneratedAt     time.Time          `json:"generated_at"`
	CacheHit        bool               `json:"cache_hit"`
}

// AuditLogListRequest defines filters for listing audit entries.
type AuditLogListRequest struct {
	Page       int
	PageSize   int
	ActorID    string
	Action     string
	EntityType string
}

// AuditLogResponse serializes an audit entry.
type AuditLogResponse struct {
	ID         uint                   `json:"id"`
	ActorID    string                 `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditLogListResponse wraps a paginated audit response.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse converts an audit entry into a DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadataFromJSON(entry.Metadata),
		CreatedAt:  entry.CreatedAt,
	}
}

func metadataFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}
