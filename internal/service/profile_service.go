package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/badges"
	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

// ErrSelfReview is returned when a hiker tries to rate their own profile.
var ErrSelfReview = errors.New("you cannot review yourself")

// ProfileService reads and edits user profiles and the reviews left on them.
type ProfileService interface {
	Get(ctx context.Context, session Session, userID string) (dto.ProfileResponse, error)
	Update(ctx context.Context, session Session, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	SetPhoto(ctx context.Context, session Session, photoURL string) (dto.ProfileResponse, error)
	Search(ctx context.Context, session Session, term string) ([]dto.UserSummary, error)
	AddReview(ctx context.Context, session Session, userID string, req dto.ReviewRequest) (dto.ReviewResponse, error)
	ListReviews(ctx context.Context, session Session, userID string, limit, offset int) ([]dto.ReviewResponse, error)
}

type profileService struct {
	users      repository.UserRepository
	friends    repository.FriendshipRepository
	reviews    repository.ReviewRepository
	activities ActivityService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(
	users repository.UserRepository,
	friends repository.FriendshipRepository,
	reviews repository.ReviewRepository,
	activities ActivityService,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProfileService {
	return &profileService{
		users:      users,
		friends:    friends,
		reviews:    reviews,
		activities: activities,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, session Session, userID string) (dto.ProfileResponse, error) {
	if userID == "" {
		userID = session.UserID
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return s.profile(ctx, session, user)
}

func (s *profileService) Update(ctx context.Context, session Session, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.ProfileResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(s.sanitizer.Sanitize(*req.DisplayName))
		if name == "" {
			return dto.ProfileResponse{}, fmt.Errorf("%w: display name", ErrInvalidInput)
		}
		updates["display_name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Bio))
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = strings.TrimSpace(*req.PhotoURL)
	}
	if len(updates) == 0 {
		return s.Get(ctx, session, session.UserID)
	}

	user, err := s.users.Update(ctx, session.UserID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("update profile: %w", err)
	}
	return s.profile(ctx, session, user)
}

func (s *profileService) SetPhoto(ctx context.Context, session Session, photoURL string) (dto.ProfileResponse, error) {
	return s.Update(ctx, session, dto.ProfileUpdateRequest{PhotoURL: &photoURL})
}

func (s *profileService) Search(ctx context.Context, session Session, term string) ([]dto.UserSummary, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	banned := false
	users, _, err := s.users.List(ctx, repository.UserFilter{Search: strings.TrimSpace(term), Banned: &banned, Page: 1, PageSize: 20})
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserSummary, 0, len(users))
	for _, user := range users {
		if user.ID == session.UserID {
			continue
		}
		summary := dto.NewUserSummary(user)
		summary.Email = ""
		out = append(out, summary)
	}
	return out, nil
}

func (s *profileService) AddReview(ctx context.Context, session Session, userID string, req dto.ReviewRequest) (dto.ReviewResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.ReviewResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewResponse{}, err
	}
	target, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if target.ID == session.UserID {
		return dto.ReviewResponse{}, ErrSelfReview
	}

	reviewerName := session.DisplayName
	if reviewerName == "" {
		if reviewer, err := s.users.FindByID(ctx, session.UserID); err == nil {
			reviewerName = reviewer.DisplayName
		}
	}

	review := models.Review{
		TargetUserID: target.ID,
		ReviewerID:   session.UserID,
		ReviewerName: reviewerName,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(s.sanitizer.Sanitize(req.Comment)),
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		return dto.ReviewResponse{}, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info().Str("target_id", target.ID).Str("reviewer_id", session.UserID).Int("rating", review.Rating).Msg("review added")
	return dto.NewReviewResponse(review), nil
}

func (s *profileService) ListReviews(ctx context.Context, session Session, userID string, limit, offset int) ([]dto.ReviewResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	target, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByTarget(ctx, target.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, dto.NewReviewResponse(review))
	}
	return out, nil
}

func (s *profileService) loadUser(ctx context.Context, userID string) (models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return models.User{}, fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *profileService) profile(ctx context.Context, session Session, user models.User) (dto.ProfileResponse, error) {
	stats, err := s.activities.Stats(ctx, user.ID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	friends, err := s.friends.CountFriends(ctx, user.ID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	rating, err := s.reviews.Summary(ctx, user.ID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	summary := dto.NewUserSummary(user)
	if user.ID != session.UserID && !session.IsAdmin() {
		summary.Email = ""
	}

	earned := []string(user.Badges)
	if earned == nil {
		earned = []string{}
	}
	return dto.ProfileResponse{
		UserSummary:   summary,
		Bio:           user.Bio,
		Level:         badges.HigherLevel(user.Level, ""),
		Badges:        earned,
		Stats:         stats,
		Friends:       int(friends),
		ReviewCount:   rating.Count,
		AverageRating: math.Round(rating.Average*10) / 10,
		MemberSince:   user.CreatedAt,
	}, nil
}
