package dto

import (
	"time"

	"github.com/noah-isme/hikelink-api/internal/models"
)

// ReportCreateRequest submits feedback or a bug report.
type ReportCreateRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=feedback bug"`
	Subject string `json:"subject" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"required,min=3,max=5000"`
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// ReportResponse is a stored report.
type ReportResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReportResponse converts a report model into a DTO.
func NewReportResponse(model models.Report) ReportResponse {
	return ReportResponse{
		ID:        model.ID,
		Kind:      model.Kind,
		UserID:    model.UserID,
		UserEmail: model.UserEmail,
		Subject:   model.Subject,
		Message:   model.Message,
		Rating:    model.Rating,
		CreatedAt: model.CreatedAt,
	}
}

// NewReportResponseSlice converts reports into DTOs.
func NewReportResponseSlice(items []models.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewReportResponse(item))
	}
	return out
}

// UploadResponse describes a stored file.
type UploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// AssistantMessageRequest is a question for the hiking assistant.
type AssistantMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// AssistantMessageResponse is the assistant's answer.
type AssistantMessageResponse struct {
	Reply string `json:"reply"`
}

// ReportListRequest filters the admin report listing.
type ReportListRequest struct {
	Kind     string `validate:"omitempty,oneof=feedback bug"`
	Page     int
	PageSize int
}

// ReportListResponse wraps a paginated report listing.
type ReportListResponse struct {
	Items      []ReportResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}
